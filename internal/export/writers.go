package export

import (
	"encoding/csv"
	"html/template"
	"io"
	"strconv"

	json "github.com/goccy/go-json"
)

var csvHeader = []string{"Platform", "Score", "Average Preference", "Privacy Score", "Popularity Score"}

// WriteJSON writes the report indented by two spaces.
func WriteJSON(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// WriteCSV writes one row per recommendation, best first.
func WriteCSV(w io.Writer, rep Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, rec := range rep.RecommendedPlatforms {
		row := []string{
			rec.Name,
			formatNumber(rec.RecommendationScore),
			formatNumber(rec.AveragePreference),
			strconv.Itoa(rec.PrivacyScore),
			strconv.Itoa(rec.PopularityScore),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"num":  formatNumber,
	"rank": func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Group analysis {{.Group.ID}}</title>
</head>
<body>
<h1>Group analysis</h1>
<p>Generated {{.Timestamp.Format "2006-01-02T15:04:05Z07:00"}}</p>
<h2>Members</h2>
<ul>
{{- range .Group.Members}}
<li>{{.Name}}{{if .Email}} ({{.Email}}){{end}}</li>
{{- end}}
</ul>
<h2>Analysis</h2>
<p>{{.Analysis}}</p>
<h2>Recommendations</h2>
<p>{{.RecommendationReason}}</p>
<table>
<thead>
<tr><th>#</th><th>Platform</th><th>Score</th><th>Average Preference</th><th>Privacy Score</th><th>Popularity Score</th><th>Missing Features</th></tr>
</thead>
<tbody>
{{- range $i, $r := .RecommendedPlatforms}}
<tr><td>{{rank $i}}</td><td>{{$r.Name}}</td><td>{{num $r.RecommendationScore}}</td><td>{{num $r.AveragePreference}}</td><td>{{$r.PrivacyScore}}</td><td>{{$r.PopularityScore}}</td><td>{{range $j, $f := $r.MissingFeatures}}{{if $j}}, {{end}}{{$f}}{{end}}</td></tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

// WriteHTML writes a standalone HTML page with the ranking table.
func WriteHTML(w io.Writer, rep Report) error {
	return htmlReport.Execute(w, rep)
}

// formatNumber prints the shortest decimal form, so 12 stays "12" and 14.9
// stays "14.9".
func formatNumber(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
