package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/vbraga/tubefetch/internal/model"
	"github.com/vbraga/tubefetch/internal/prompt"
)

func cmdFormats(configPath *string) *cli.Command {
	return &cli.Command{
		Name:      "formats",
		Aliases:   []string{"F"},
		Usage:     "List the available formats for a URL",
		ArgsUsage: "URL",
		Action: func(ctx context.Context, c *cli.Command) error {
			url := c.Args().First()
			if url == "" {
				return goerr.New("a video URL is required", goerr.T(model.ErrTagInput))
			}
			if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
				return goerr.New("URL must start with http:// or https://",
					goerr.T(model.ErrTagInput), goerr.V("url", url))
			}

			rt, err := newRuntime(*configPath)
			if err != nil {
				return err
			}
			defer rt.close()

			info, err := rt.svc.ListFormats(ctx, url)
			if err != nil {
				return err
			}

			fmt.Printf("%s (%s)\n", info.Title, info.ID)
			prompt.WriteFormats(os.Stdout, info)
			return nil
		},
	}
}
