package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Sternrassler/content-client/pkg/client"
	"github.com/Sternrassler/content-client/pkg/pagination"
	"github.com/spf13/cobra"
)

// listFunc runs one list query and returns what should be printed.
type listFunc func(ctx context.Context, c *client.Client, params client.ListParams, all bool) (any, error)

func listVideos(ctx context.Context, c *client.Client, params client.ListParams, all bool) (any, error) {
	if all {
		return pagination.NewCollector(c.ListVideos, pagination.DefaultConfig()).FetchAll(ctx, params)
	}
	return c.ListVideos(ctx, params)
}

func listArticles(ctx context.Context, c *client.Client, params client.ListParams, all bool) (any, error) {
	if all {
		return pagination.NewCollector(c.ListArticles, pagination.DefaultConfig()).FetchAll(ctx, params)
	}
	return c.ListArticles(ctx, params)
}

func (a *app) newListCommand(use, short string, run listFunc) *cobra.Command {
	var (
		params   client.ListParams
		featured bool
		all      bool
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("featured") {
				params.Featured = client.Bool(featured)
			}
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) (any, error) {
				return run(ctx, c, params, all)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&params.Search, "search", "", "full-text search")
	flags.StringVar(&params.Category, "category", "", `category filter ("all" for none)`)
	flags.StringVar(&params.ResearchArea, "research-area", "", `research area filter ("all" for none)`)
	flags.StringVar(&params.SortBy, "sort-by", "", "sort key: date, title, views, duration")
	flags.StringVar(&params.SortOrder, "sort-order", "", "asc or desc")
	flags.IntVar(&params.Page, "page", 0, "page number (default 1)")
	flags.IntVar(&params.Limit, "limit", 0, "page size 1-100 (default 12)")
	flags.BoolVar(&featured, "featured", false, "only featured (or, with =false, only non-featured) items")
	flags.BoolVar(&all, "all", false, "fetch every page")

	return cmd
}

// getFunc fetches one item by id.
type getFunc func(ctx context.Context, c *client.Client, id string) (any, error)

func getVideo(ctx context.Context, c *client.Client, id string) (any, error) {
	return c.GetVideo(ctx, id)
}

func getArticle(ctx context.Context, c *client.Client, id string) (any, error) {
	return c.GetArticle(ctx, id)
}

func (a *app) newGetCommand(use, short string, run getFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) (any, error) {
				return run(ctx, c, args[0])
			})
		},
	}
}

// simpleFunc fetches a resource without parameters.
type simpleFunc func(ctx context.Context, c *client.Client) (any, error)

func getStats(ctx context.Context, c *client.Client) (any, error) {
	return c.GetStats(ctx)
}

func getCategories(ctx context.Context, c *client.Client) (any, error) {
	return c.GetCategories(ctx)
}

func getHealth(ctx context.Context, c *client.Client) (any, error) {
	return c.Health(ctx)
}

func (a *app) newSimpleCommand(use, short string, run simpleFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *client.Client) (any, error) {
				return run(ctx, c)
			})
		},
	}
}

// withClient creates a client, runs fn and prints its result as JSON.
func (a *app) withClient(cmd *cobra.Command, fn func(ctx context.Context, c *client.Client) (any, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c, closeFn, err := a.newClient(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := fn(ctx, c)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
