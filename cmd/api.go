package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the lyric API, e.g. "/lyrics/naat?page=0&size=5".
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("path")
	if raw == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	r.logger.Info("GET request", "path", u.Path, "query", u.RawQuery)

	resp, err := r.api.Get(ctx, u.Path, u.Query())
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if !resp.OK() {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON && cmd.Bool("pretty") {
		var buf bytes.Buffer
		if err := json.Indent(&buf, resp.Body, "", "  "); err == nil {
			return r.writePlain("%s\n", buf.String())
		}
	}

	return r.writePlain("%s\n", resp.Body)
}
