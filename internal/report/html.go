package report

import (
	"html/template"
	"strings"
)

// htmlTemplate mirrors the plain-text section ordering in a minimal
// table layout that renders acceptably in email clients.
var htmlTemplate = template.Must(template.New("summary").Parse(`<html>
<body>
<h2>Ticket System Summary</h2>
<p>Generated on: {{.GeneratedAt}}</p>

<h3>Overview</h3>
<ul>
<li>Total Tickets: {{.TotalTickets}}</li>
<li>Total Open Tickets: {{.TotalOpen}}</li>
<li>Total Closed Tickets: {{.TotalClosed}}</li>
</ul>

<h3>Current Year ({{.Year.Year}})</h3>
<ul>
<li>Created: {{.Year.CreatedTotal}} (open {{.Year.CreatedOpen}}, closed {{.Year.CreatedClosed}})</li>
<li>Closed in {{.Year.Year}}: {{.Year.ClosedTotal}}</li>
</ul>

<h3>Date Comparison</h3>
<ul>
<li>Date A ({{.DateALabel}}): opened {{.OpenedOnA}}, closed/resolved {{.ClosedOnA}}</li>
<li>Date B ({{.DateBLabel}}): opened {{.OpenedOnB}}, closed/resolved {{.ClosedOnB}}</li>
</ul>

<h3>Rolling Periods</h3>
<ul>
{{- range .Rolling}}
<li>{{.Label}}: opened {{.Opened}}, closed/resolved {{.Closed}}</li>
{{- end}}
</ul>

<h3>Period Metrics</h3>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Scope</th><th>Created</th><th>On Hold</th><th>Pending Action</th><th>Pending User Update</th><th>Closed</th></tr>
{{- range .Sections}}
<tr><td>{{.Label}}</td><td>{{.Created}}</td><td>{{.OnHold}}</td><td>{{.PendingAction}}</td><td>{{.PendingUserUpdate}}</td><td>{{.Closed}}</td></tr>
{{- end}}
</table>

<h3>Abandoned Open Tickets</h3>
<ul>
<li>Not updated &gt;7 days: {{.AbandonedOver7}}</li>
<li>Not updated &gt;15 days: {{.AbandonedOver15}}</li>
<li>Not updated &gt;30 days: {{.AbandonedOver30}}</li>
</ul>
</body>
</html>
`))

// RenderHTML produces the HTML variant of the report with the same
// section structure as RenderText.
func (s Summary) RenderHTML() (string, error) {
	data := s.build()
	var b strings.Builder
	if err := htmlTemplate.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
