package report

import (
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/ppiankov/treelint/internal/model"
)

var tmplFuncs = template.FuncMap{
	"personURL": PersonURL,
	"label":     personLabel,
	"join":      joinOrDash,
	"orDash":    orDash,
	"factDate":  factDate,
	"inc":       func(i int) int { return i + 1 },
	"add":       func(a, b int) int { return a + b },
}

var (
	auditTmpl    = template.Must(template.New("audit").Funcs(tmplFuncs).Parse(auditTemplate))
	profileTmpl  = template.Must(template.New("profile").Funcs(tmplFuncs).Parse(profileTemplate))
	clustersTmpl = template.Must(template.New("clusters").Funcs(tmplFuncs).Parse(clustersTemplate))
	researchTmpl = template.Must(template.New("research").Funcs(tmplFuncs).Parse(researchTemplate))
)

type auditData struct {
	Report *model.AuditReport
	Footer bool
}

type profileData struct {
	Profile     *model.PersonProfile
	GeneratedAt time.Time
	Footer      bool
}

type clustersData struct {
	Surname     string
	Threshold   float64
	Clusters    []model.NameCluster
	GeneratedAt time.Time
	Footer      bool
}

type researchData struct {
	Report     *model.ResearchReport
	SearchLink string
	RecordLink string
	Footer     bool
}

func personLabel(id, name string) string {
	if name == "" {
		return id
	}
	return name
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func factDate(f model.Fact) string {
	if f.DateOriginal != "" {
		return f.DateOriginal
	}
	if year, ok := f.Year(); ok {
		return strconv.Itoa(year)
	}
	return "-"
}

const footerBlock = `
---

Generated by treelint. Findings are rule-based and reproducible; verify against original records before editing the tree.
`

const auditTemplate = `# Family Tree Audit: {{.Report.RootID}}

- Run: {{.Report.RunID}}
- Generated: {{.Report.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}
- Generations analyzed: {{.Report.Generations}}
- Critical findings: {{.Report.CriticalCount}}
- Warnings: {{.Report.WarningCount}}

## Relationship Integrity

Checked {{.Report.Tree.PersonsChecked}} persons reachable from [{{.Report.RootID}}]({{personURL .Report.RootID}}).{{if .Report.Tree.Truncated}} The sweep stopped at the configured person limit; rerun with a higher limit for full coverage.{{end}}

{{if .Report.Tree.Issues}}| Severity | Issue | Person | Detail |
|----------|-------|--------|--------|
{{range .Report.Tree.Issues}}| {{.Severity}} | {{.Type}} | [{{label .PersonID .PersonName}}]({{personURL .PersonID}}) | {{.Description}} |
{{end}}{{else}}No structural issues found.
{{end}}
## Timeline Plausibility

{{if .Report.TimelineIssues}}| Severity | Issue | Person | Detail |
|----------|-------|--------|--------|
{{range .Report.TimelineIssues}}| {{.Severity}} | {{.Type}} | [{{label .PersonID .PersonName}}]({{personURL .PersonID}}) | {{.Description}} |
{{end}}{{else}}No timeline issues at or above the reported severity.
{{end}}
## Likely Duplicates

{{if .Report.Duplicates}}| Score | Person 1 | Person 2 |
|-------|----------|----------|
{{range .Report.Duplicates}}| {{printf "%.3f" .Score}} | [{{label .Person1.ID .Person1.Name}}]({{personURL .Person1.ID}}) ({{.Person1.ID}}) | [{{label .Person2.ID .Person2.Name}}]({{personURL .Person2.ID}}) ({{.Person2.ID}}) |
{{end}}{{else}}No likely duplicate pairs above the threshold.
{{end}}
## Research Priorities

{{if .Report.Priorities}}| Rank | Person | Generation | Score | Sources | Missing vital | Missing important |
|------|--------|------------|-------|---------|---------------|-------------------|
{{range $i, $p := .Report.Priorities}}| {{inc $i}} | [{{label $p.PersonID $p.PersonName}}]({{personURL $p.PersonID}}) | {{$p.Generation}} | {{$p.Score}} | {{$p.TotalSources}} | {{join $p.MissingVital}} | {{join $p.MissingImportant}} |
{{end}}{{else}}Every analyzed ancestor has adequate source coverage.
{{end}}{{if .Footer}}` + footerBlock + `{{end}}`

const profileTemplate = `# {{.Profile.Person.DisplayName}}

- ID: [{{.Profile.Person.ID}}]({{personURL .Profile.Person.ID}})
- Gender: {{orDash .Profile.Person.Gender}}
- Generated: {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}

## Names

{{if .Profile.Names}}| Type | Given | Surname |
|------|-------|---------|
{{range .Profile.Names}}| {{orDash .Type}} | {{orDash .Given}} | {{orDash .Surname}} |
{{end}}{{else}}No name forms recorded.
{{end}}
## Facts

{{if .Profile.Facts}}| Event | Date | Place |
|-------|------|-------|
{{range .Profile.Facts}}| {{.Type}} | {{factDate .}} | {{orDash .Place}} |
{{end}}{{else}}No facts recorded.
{{end}}
## Family

{{if .Profile.Parents}}Parents:

{{range .Profile.Parents}}- [{{.DisplayName}}]({{personURL .ID}}){{if .Role}} ({{.Role}}){{end}}
{{end}}
{{end}}{{if .Profile.Spouses}}Spouses:

{{range .Profile.Spouses}}- [{{.DisplayName}}]({{personURL .ID}}){{if .MarriageDate}}, married {{.MarriageDate}}{{end}}{{if .MarriagePlace}} in {{.MarriagePlace}}{{end}}
{{end}}
{{end}}{{if .Profile.Children}}Children:

{{range .Profile.Children}}- [{{.DisplayName}}]({{personURL .ID}})
{{end}}
{{end}}{{if and (not .Profile.Parents) (not .Profile.Spouses) (not .Profile.Children)}}No recorded relationships.

{{end}}## Sources ({{len .Profile.Sources}})

{{if .Profile.Sources}}{{range .Profile.Sources}}- {{.Title}}{{if .Tag}} ({{.Tag}}){{end}}
{{end}}{{else}}No sources attached. Consider a records search before accepting any fact above.
{{end}}{{if .Footer}}` + footerBlock + `{{end}}`

const clustersTemplate = `# Name Clusters: {{.Surname}}

- Similarity threshold: {{printf "%.2f" .Threshold}}
- Clusters found: {{len .Clusters}}
- Generated: {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}

{{range $i, $c := .Clusters}}## Cluster {{inc $i}}: {{label $c.RepresentativeID $c.RepresentativeName}} ({{$c.Size}} persons)

| Person | ID | Similarity to representative |
|--------|----|-----------------------------|
{{range $c.Members}}| [{{label .PersonID .Name}}]({{personURL .PersonID}}) | {{.PersonID}} | {{printf "%.3f" .Score}} |
{{end}}
{{end}}{{if not .Clusters}}No clusters found at this threshold.
{{end}}{{if .Footer}}` + footerBlock + `{{end}}`

const researchTemplate = `# Research Leads: {{.Report.Profile.Person.DisplayName}}

- Root: [{{.Report.Profile.Person.ID}}]({{personURL .Report.Profile.Person.ID}})
- Generations analyzed: {{.Report.Generations}}
- Generated: {{.Report.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}
{{if .SearchLink}}- [Search the tree for this name]({{.SearchLink}})
{{end}}{{if .RecordLink}}- [Search historical records]({{.RecordLink}})
{{end}}
{{if .Report.Coverage}}## Source Coverage

- Sources attached: {{.Report.Coverage.TotalSources}}
- Facts recorded: {{.Report.Coverage.TotalFacts}}
- Vital events sourced: {{.Report.Coverage.VitalWithSources}} of {{add .Report.Coverage.VitalWithSources .Report.Coverage.VitalWithoutSources}}
- Important events sourced: {{.Report.Coverage.ImportantWithSources}} of {{add .Report.Coverage.ImportantWithSources .Report.Coverage.ImportantWithoutSources}}
- Unsourced vital events: {{join .Report.Coverage.MissingVitalEvents}}
- Unsourced important events: {{join .Report.Coverage.MissingImportantEvents}}

{{end}}## Ranked Targets

{{if .Report.Priorities}}| Rank | Person | Generation | Score | Sources | Missing vital | Missing important |
|------|--------|------------|-------|---------|---------------|-------------------|
{{range $i, $p := .Report.Priorities}}| {{inc $i}} | [{{label $p.PersonID $p.PersonName}}]({{personURL $p.PersonID}}) | {{$p.Generation}} | {{$p.Score}} | {{$p.TotalSources}} | {{join $p.MissingVital}} | {{join $p.MissingImportant}} |
{{end}}{{else}}Every analyzed ancestor has adequate source coverage.
{{end}}{{if .Footer}}` + footerBlock + `{{end}}`
