package web

import "embed"

//go:embed templates/*.html
var TemplatesFS embed.FS

const DashboardTemplate = "templates/dt-dashboard.html"
