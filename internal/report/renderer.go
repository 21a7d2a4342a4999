// Package report renders analysis results as JSON and Markdown
// artifacts. Markdown reports link every person back to FamilySearch
// so findings can be verified in place.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/ppiankov/treelint/internal/model"
)

const timestampLayout = "20060102_150405"

// Renderer writes reports. The footer toggle controls the provenance
// trailer on Markdown outputs.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderAuditJSON writes an audit report as indented JSON.
func (r *Renderer) RenderAuditJSON(w io.Writer, report *model.AuditReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// RenderAuditMarkdown writes the full audit report as Markdown.
func (r *Renderer) RenderAuditMarkdown(w io.Writer, report *model.AuditReport) error {
	return auditTmpl.Execute(w, auditData{Report: report, Footer: r.includeFooter})
}

// RenderProfileMarkdown writes a single-person profile as Markdown.
func (r *Renderer) RenderProfileMarkdown(w io.Writer, profile *model.PersonProfile) error {
	return profileTmpl.Execute(w, profileData{
		Profile:     profile,
		GeneratedAt: time.Now().UTC(),
		Footer:      r.includeFooter,
	})
}

// RenderClustersMarkdown writes a name-cluster report as Markdown. An
// empty surname filter renders as "All".
func (r *Renderer) RenderClustersMarkdown(w io.Writer, surname string, threshold float64, clusters []model.NameCluster) error {
	label := surname
	if label == "" {
		label = "All"
	}
	return clustersTmpl.Execute(w, clustersData{
		Surname:     label,
		Threshold:   threshold,
		Clusters:    clusters,
		GeneratedAt: time.Now().UTC(),
		Footer:      r.includeFooter,
	})
}

// RenderResearchMarkdown writes a research-leads report as Markdown,
// including FamilySearch search links built from the root's primary
// name and birth fact when those are recorded.
func (r *Renderer) RenderResearchMarkdown(w io.Writer, report *model.ResearchReport) error {
	data := researchData{Report: report, Footer: r.includeFooter}
	if name := primaryName(report.Profile.Names); name != nil {
		year, place := "", ""
		if birth, ok := model.FactsByType(report.Profile.Facts)[model.FactBirth]; ok {
			if y, hasYear := birth.Year(); hasYear {
				year = strconv.Itoa(y)
			}
			place = birth.Place
		}
		data.SearchLink = SearchURL(name.Given, name.Surname, year, place)
		data.RecordLink = RecordSearchURL("", name.Given, name.Surname)
	}
	return researchTmpl.Execute(w, data)
}

// RenderJSON writes any report value as indented JSON to a file.
func (r *Renderer) RenderJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdown writes the full audit report to a Markdown file.
func (r *Renderer) RenderMarkdown(report *model.AuditReport, path string) error {
	return r.renderFile(path, func(w io.Writer) error {
		return r.RenderAuditMarkdown(w, report)
	})
}

// RenderProfile writes a person profile to a Markdown file.
func (r *Renderer) RenderProfile(profile *model.PersonProfile, path string) error {
	return r.renderFile(path, func(w io.Writer) error {
		return r.RenderProfileMarkdown(w, profile)
	})
}

// RenderClusters writes a name-cluster report to a Markdown file.
func (r *Renderer) RenderClusters(surname string, threshold float64, clusters []model.NameCluster, path string) error {
	return r.renderFile(path, func(w io.Writer) error {
		return r.RenderClustersMarkdown(w, surname, threshold, clusters)
	})
}

// RenderResearch writes a research-leads report to a Markdown file.
func (r *Renderer) RenderResearch(report *model.ResearchReport, path string) error {
	return r.renderFile(path, func(w io.Writer) error {
		return r.RenderResearchMarkdown(w, report)
	})
}

// RenderLLMMarkdown writes pre-rendered LLM Markdown to its own file.
// Empty content writes nothing.
func (r *Renderer) RenderLLMMarkdown(markdown string, path string) error {
	if markdown == "" {
		return nil
	}
	if err := os.WriteFile(path, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderSummary prints a short audit summary to stdout.
func (r *Renderer) RenderSummary(report *model.AuditReport) {
	fmt.Printf("\n")
	fmt.Printf("═══════════════════════════════════════════════════════════\n")
	fmt.Printf("  Tree Audit: %s\n", report.RootID)
	fmt.Printf("═══════════════════════════════════════════════════════════\n")
	fmt.Printf("\n")
	fmt.Printf("  Persons checked:   %d\n", report.Tree.PersonsChecked)
	fmt.Printf("  Critical findings: %d\n", report.CriticalCount)
	fmt.Printf("  Warnings:          %d\n", report.WarningCount)
	fmt.Printf("  Likely duplicates: %d\n", len(report.Duplicates))
	fmt.Printf("  Research targets:  %d\n", len(report.Priorities))
	if report.LLM != nil && report.LLM.Enabled {
		fmt.Printf("  LLM narrative:     %s/%s\n", report.LLM.Provider, report.LLM.Model)
	}
	fmt.Printf("\n")
}

func (r *Renderer) renderFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}

func primaryName(names []model.Name) *model.Name {
	for i := range names {
		if names[i].Type == model.NameTypeBirth {
			return &names[i]
		}
	}
	if len(names) > 0 {
		return &names[0]
	}
	return nil
}

// AuditFilename returns the timestamped base name (no extension) for an
// audit report.
func AuditFilename(rootID string, t time.Time) string {
	return fmt.Sprintf("audit_%s_%s", rootID, t.Format(timestampLayout))
}

// ProfileFilename returns the base name for a person profile report.
func ProfileFilename(personID string) string {
	return "person_" + personID
}

// ClustersFilename returns the timestamped base name for a name-cluster
// report. An empty surname filter names the file "all".
func ClustersFilename(surname string, t time.Time) string {
	suffix := surname
	if suffix == "" {
		suffix = "all"
	}
	return fmt.Sprintf("name_clusters_%s_%s", suffix, t.Format(timestampLayout))
}

// ResearchFilename returns the timestamped base name for a
// research-leads report.
func ResearchFilename(rootID string, t time.Time) string {
	return fmt.Sprintf("research_leads_%s_%s", rootID, t.Format(timestampLayout))
}
