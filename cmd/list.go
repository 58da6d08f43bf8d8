package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/conneroisu/coachsite/internal/config"
	"github.com/conneroisu/coachsite/internal/content"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

var listCmd = &cobra.Command{
	Use:       "list services|testimonials|posts",
	Aliases:   []string{"l"},
	Short:     "List content as the site would serve it",
	ValidArgs: []string{"services", "testimonials", "posts"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Long: `List services, testimonials or published blog posts after the same
filtering the API applies.

Examples:
  coachsite list services --category group
  coachsite list services --available -f json
  coachsite list testimonials --featured
  coachsite list posts --query career --featured -f yaml`,
	RunE: runList,
}

var (
	listCategory  string
	listFeatured  bool
	listAvailable bool
	listQuery     string
	listFormat    string
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Only this category (services, posts)")
	listCmd.Flags().BoolVar(&listFeatured, "featured", false, "Only featured items (testimonials, posts)")
	listCmd.Flags().BoolVar(&listAvailable, "available", false, "Only available services")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Search titles, excerpts, categories and tags (posts)")
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "Output format (table, json, yaml)")
}

// listOptions are the filters shared by every list target.
type listOptions struct {
	Category  string
	Featured  bool
	Available bool
	Query     string
	Format    string
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	opts := listOptions{
		Category:  listCategory,
		Featured:  listFeatured,
		Available: listAvailable,
		Query:     listQuery,
		Format:    listFormat,
	}
	manager := content.NewManager(contentSource(cfg), logger)
	return listContent(context.Background(), cmd.OutOrStdout(), manager, args[0], opts)
}

func listContent(ctx context.Context, w io.Writer, manager *content.Manager, target string, opts listOptions) error {
	switch opts.Format {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unsupported format: %s (supported: table, json, yaml)", opts.Format)
	}

	switch target {
	case "services":
		services := manager.LoadServices(ctx)
		if opts.Category != "" {
			services = content.FilterServicesByCategory(services, opts.Category)
		}
		if opts.Available {
			services = content.GetAvailableServices(services)
		}
		if opts.Format != "table" {
			return encode(w, opts.Format, services)
		}
		return servicesTable(w, services)

	case "testimonials":
		testimonials := manager.LoadTestimonials(ctx)
		if opts.Featured {
			testimonials = content.GetFeaturedTestimonials(testimonials)
		}
		if opts.Format != "table" {
			return encode(w, opts.Format, testimonials)
		}
		return testimonialsTable(w, testimonials)

	case "posts":
		posts := manager.LoadBlogPosts(ctx)
		if opts.Query != "" {
			posts = content.SearchBlogPosts(posts, opts.Query)
		}
		if opts.Category != "" {
			posts = content.GetBlogPostsByCategory(posts, opts.Category)
		}
		if opts.Featured {
			posts = content.GetFeaturedBlogPosts(posts)
		}
		if opts.Format != "table" {
			return encode(w, opts.Format, posts)
		}
		return postsTable(w, posts)
	}
	return fmt.Errorf("unknown list target %q (services, testimonials, posts)", target)
}

func encode(w io.Writer, format string, v interface{}) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// categoryTitle turns "career-transition" into "Career Transition".
func categoryTitle(category string) string {
	if category == "" {
		return "Uncategorized"
	}
	return cases.Title(language.English).String(strings.ReplaceAll(category, "-", " "))
}

// groupByCategory keeps first-appearance order of categories and items.
func groupByCategory[T any](items []T, category func(T) string) ([]string, map[string][]T) {
	var order []string
	groups := make(map[string][]T)
	for _, item := range items {
		c := category(item)
		if _, seen := groups[c]; !seen {
			order = append(order, c)
		}
		groups[c] = append(groups[c], item)
	}
	return order, groups
}

func servicesTable(w io.Writer, services []content.Service) error {
	if len(services) == 0 {
		_, err := fmt.Fprintln(w, "No services found.")
		return err
	}
	order, groups := groupByCategory(services, func(s content.Service) string { return string(s.Category) })

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, category := range order {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintln(tw, categoryTitle(category))
		fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tDURATION\tAVAILABLE")
		for _, s := range groups[category] {
			available := s.Availability == nil || *s.Availability
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", s.ID, s.Title, dash(s.Price), dash(s.Duration), available)
		}
	}
	return tw.Flush()
}

func testimonialsTable(w io.Writer, testimonials []content.Testimonial) error {
	if len(testimonials) == 0 {
		_, err := fmt.Fprintln(w, "No testimonials found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRATING\tFEATURED\tDATE")
	for _, t := range testimonials {
		rating := "-"
		if t.Rating != nil {
			rating = fmt.Sprint(*t.Rating)
		}
		date := "-"
		if t.DateGiven != nil {
			date = t.DateGiven.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", t.ID, t.ClientName, rating, t.Featured, date)
	}
	return tw.Flush()
}

func postsTable(w io.Writer, posts []content.BlogPost) error {
	if len(posts) == 0 {
		_, err := fmt.Fprintln(w, "No posts found.")
		return err
	}
	order, groups := groupByCategory(posts, func(p content.BlogPost) string { return p.Category })

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, category := range order {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintln(tw, categoryTitle(category))
		fmt.Fprintln(tw, "ID\tTITLE\tPUBLISHED\tFEATURED")
		for _, p := range groups[category] {
			published := "-"
			if !p.PublishDate.IsZero() {
				published = p.PublishDate.Format("2006-01-02")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", p.ID, p.Title, published, p.Featured)
		}
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
