package client

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestSolverPage(t *testing.T) {
	page := SolverPage("sid-1", `{"rows": 2}`, []string{"older", "newer"})
	for _, want := range []string{
		"Pips: Solver",
		"Puzzle Solver",
		`{&#34;rows&#34;: 2}`,
		"/api/solve",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("solver page missing %q", want)
		}
	}
	// history renders most recent first
	if strings.Index(page, "newer") > strings.Index(page, "older") {
		t.Errorf("history not newest-first")
	}
}

func TestSolverPageNoHistory(t *testing.T) {
	page := SolverPage("sid-1", "", nil)
	if strings.Contains(page, "Recent puzzles") {
		t.Errorf("empty history still renders a history section")
	}
}

func TestErrorPage(t *testing.T) {
	page := ErrorPage(fmt.Errorf("something <broke>"))
	if !strings.Contains(page, "Pips: Error") {
		t.Errorf("error page missing title")
	}
	// the message is escaped, not injected
	if !strings.Contains(page, "something &lt;broke&gt;") {
		t.Errorf("error page message not escaped: %q", page)
	}
}

func TestApplicationFooter(t *testing.T) {
	defer func() {
		os.Unsetenv(applicationEnvEnvVar)
		os.Unsetenv(applicationVersionEnvVar)
		os.Unsetenv(applicationBuildEnvVar)
	}()
	os.Unsetenv(applicationEnvEnvVar)
	if footer := applicationFooter(); footer != "[Pips local]" {
		t.Errorf("local footer is %q", footer)
	}
	os.Setenv(applicationEnvEnvVar, "prd")
	os.Setenv(applicationVersionEnvVar, "1.2")
	os.Setenv(applicationBuildEnvVar, "abcdef0123456789")
	if footer := applicationFooter(); footer != "[Pips 1.2 <abcdef0>]" {
		t.Errorf("prd footer is %q", footer)
	}
}
