// Package client generates the HTML pages for the Pips web
// server.  The page templates are compiled into the binary, so a
// deployed server has no on-disk resource directory to locate.
package client

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"sync"
)

/*

Common client settings

*/

const (
	brandName          = "Pips"
	templatePageSuffix = "Page.tmpl.html"

	applicationNameEnvVar    = "APPLICATION_NAME"
	applicationEnvEnvVar     = "APPLICATION_ENV"
	applicationVersionEnvVar = "APPLICATION_VERSION"
	applicationBuildEnvVar   = "APPLICATION_BUILD"
)

//go:embed tmpl
var templateFS embed.FS

/*

find and parse templates

*/

// loadedTemplates is the cache of already-parsed templates
var (
	loadedTemplates = make(map[string]*template.Template)
	templateMutex   sync.Mutex
)

// loadPageTemplate does what you would expect: give it the
// template name, and it will find and parse the embedded
// template and return the result.
func loadPageTemplate(name string) (*template.Template, error) {
	templateMutex.Lock()
	defer templateMutex.Unlock()
	if tmpl, ok := loadedTemplates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := template.ParseFS(templateFS, "tmpl/"+name+templatePageSuffix)
	if err != nil {
		return nil, err
	}
	loadedTemplates[name] = tmpl
	return tmpl, nil
}

/*

solver pages

*/

// A templateSolverPage contains the values to fill the solver
// page template.
type templateSolverPage struct {
	Title, TopHead    string
	SessionID         string
	Description       string   // puzzle description JSON to prefill
	History           []string // signatures of past solves, most recent first
	ApplicationFooter string
}

// SolverPage executes the solver page template and returns the
// page content as a string.  The description prefills the puzzle
// input; the history signatures are listed for resubmission.
func SolverPage(sessionID, description string, history []string) string {
	// most recent solve first
	reversed := make([]string, len(history))
	for i, signature := range history {
		reversed[len(history)-1-i] = signature
	}
	tsp := templateSolverPage{
		Title:             fmt.Sprintf("%s: Solver", brandName),
		TopHead:           "Puzzle Solver",
		SessionID:         sessionID,
		Description:       description,
		History:           reversed,
		ApplicationFooter: applicationFooter(),
	}
	tmpl, err := loadPageTemplate("solver")
	if err != nil {
		return ErrorPage(fmt.Errorf("Couldn't load the %q template: %v", "solver", err))
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, tsp); err != nil {
		return ErrorPage(err)
	}
	return buf.String()
}

/*

error pages

*/

// A templateErrorPage contains the values to fill the error page
// template.
type templateErrorPage struct {
	Title, TopHead, Message string
	ApplicationFooter       string
}

// ErrorPage returns error page content for the given error.  As
// the last resort of handlers that have nothing better to show,
// it always returns a page, even if the template itself fails.
func ErrorPage(e error) string {
	tep := templateErrorPage{
		Title:             fmt.Sprintf("%s: Error", brandName),
		TopHead:           "Error Page",
		Message:           e.Error(),
		ApplicationFooter: applicationFooter(),
	}
	tmpl, err := loadPageTemplate("error")
	if err != nil {
		return fmt.Sprintf("Error page template failure: %v (while reporting: %v)", err, e)
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, tep); err != nil {
		return fmt.Sprintf("Error page execution failure: %v (while reporting: %v)", err, e)
	}
	return buf.String()
}

/*

footers

*/

// applicationFooter - the application footer that shows at the
// bottom of every page, naming the deployment environment.
func applicationFooter() string {
	appName := os.Getenv(applicationNameEnvVar)
	appEnv := os.Getenv(applicationEnvEnvVar)
	appVersion := os.Getenv(applicationVersionEnvVar)
	appBuild := os.Getenv(applicationBuildEnvVar)

	if appName == "" {
		appName = brandName
	}
	if appEnv == "" {
		appEnv = "local"
	}
	if appVersion != "" {
		appVersion = " " + appVersion
	}
	if len(appBuild) >= 7 {
		appBuild = appBuild[:7]
	}

	switch appEnv {
	case "local":
		return "[" + appName + " local]"
	case "dev":
		return "[" + appName + " CI/CD]"
	case "stg", "prd":
		return "[" + appName + appVersion + " <" + appBuild + ">]"
	}
	return "[" + appName + " <??>]"
}
