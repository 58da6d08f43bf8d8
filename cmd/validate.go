package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/conneroisu/coachsite/internal/config"
	"github.com/conneroisu/coachsite/internal/content"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check content files for structural problems",
	Long: `Read every content document and run the structural checks on it.
Unlike the server, drafts and archived posts are checked too.

Exits with a non-zero status when any document cannot be read or fails a
check. Unparseable dates are reported as warnings.

Examples:
  coachsite validate                         # Check the built-in content
  coachsite validate --content-dir ./content`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// kindReport is the outcome of checking one content document.
type kindReport struct {
	Kind     content.Kind
	Items    int
	ReadErr  error
	Errors   []string
	Warnings []string
}

func (r kindReport) ok() bool {
	return r.ReadErr == nil && len(r.Errors) == 0
}

// validateContent reads and checks every kind from source.
func validateContent(ctx context.Context, source content.Source) []kindReport {
	reports := make([]kindReport, 0, len(content.Kinds))

	services, err := source.Services(ctx)
	report := kindReport{Kind: content.KindServices, Items: len(services), ReadErr: err}
	if err == nil {
		report.Errors = content.ValidateServices(services).Errors
	}
	reports = append(reports, report)

	rawTestimonials, err := source.Testimonials(ctx)
	report = kindReport{Kind: content.KindTestimonials, Items: len(rawTestimonials), ReadErr: err}
	if err == nil {
		testimonials, warnings := content.NormalizeTestimonials(rawTestimonials)
		report.Errors = content.ValidateTestimonials(testimonials).Errors
		report.Warnings = warnings
	}
	reports = append(reports, report)

	rawPosts, err := source.BlogPosts(ctx)
	report = kindReport{Kind: content.KindBlogPosts, Items: len(rawPosts), ReadErr: err}
	if err == nil {
		posts, warnings := content.NormalizeBlogPosts(rawPosts)
		report.Errors = content.ValidateBlogPosts(posts).Errors
		report.Warnings = warnings
	}
	reports = append(reports, report)

	site, err := source.SiteConfig(ctx)
	report = kindReport{Kind: content.KindSiteConfig, ReadErr: err}
	if err == nil {
		report.Items = 1
		report.Errors = content.ValidateSiteConfig(site).Errors
	}
	reports = append(reports, report)

	return reports
}

func renderReport(origin string, reports []kindReport) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Content check: "+origin) + "\n\n")

	failed := 0
	for _, r := range reports {
		switch {
		case r.ReadErr != nil:
			failed++
			fmt.Fprintf(&b, "%s %s\n", failStyle.Render("✗"), headingStyle.Render(string(r.Kind)))
			b.WriteString(detailStyle.Render(failStyle.Render(r.ReadErr.Error())) + "\n")
		case len(r.Errors) > 0:
			failed++
			fmt.Fprintf(&b, "%s %s %s\n", failStyle.Render("✗"), headingStyle.Render(string(r.Kind)),
				mutedStyle.Render(fmt.Sprintf("(%d items, %d problems)", r.Items, len(r.Errors))))
			for _, e := range r.Errors {
				b.WriteString(detailStyle.Render("- "+e) + "\n")
			}
		default:
			fmt.Fprintf(&b, "%s %s %s\n", okStyle.Render("✓"), headingStyle.Render(string(r.Kind)),
				mutedStyle.Render(fmt.Sprintf("(%d items)", r.Items)))
		}
		for _, w := range r.Warnings {
			b.WriteString(detailStyle.Render(warnStyle.Render("! "+w)) + "\n")
		}
	}

	b.WriteString("\n")
	if failed == 0 {
		b.WriteString(summaryStyle.Render(okStyle.Render("All content is valid")))
	} else {
		b.WriteString(summaryStyle.Render(failStyle.Render(fmt.Sprintf("%d of %d documents have problems", failed, len(reports)))))
	}
	b.WriteString("\n")
	return b.String()
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	origin := cfg.Content.Dir
	if origin == "" {
		origin = "built-in content"
	}
	reports := validateContent(context.Background(), contentSource(cfg))
	fmt.Fprint(cmd.OutOrStdout(), renderReport(origin, reports))

	for _, r := range reports {
		if !r.ok() {
			return fmt.Errorf("content validation failed")
		}
	}
	return nil
}
