package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/forskolor/internal/database"
	"github.com/nao1215/forskolor/internal/model"
)

// newDirectoryServer serves one listing page with a single preschool.
// Every other listing page has no embedded data.
func newDirectoryServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/hitta-forskola", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sida") != "1" {
			fmt.Fprint(w, `<html><body></body></html>`)
			return
		}
		fmt.Fprint(w, `<html><body><script>`+
			`ReactDOM.render(React.createElement(ServiceUnits.App, `+
			`{"initialData":{"serviceUnits":[`+
			`{"id":1,"serviceTypeId":1,"name":"Test Förskola","selfLink":"/test","regions":"Söderort"}`+
			`],"serviceTypes":[{"id":1,"name":"Kommunal"}]}}`+
			`), document.getElementById("app"));</script></body></html>`)
	})
	mux.HandleFunc("/test", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<div class="unit-contact"><p class="unit-contact__title">Rektor</p>`+
			`<p class="unit-contact__name">Anna  Berg</p><a href="mailto:a@b.se">a@b.se</a></div>`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// writeConfigFile writes a configuration file pointing at rootURL.
func writeConfigFile(t *testing.T, rootURL string, extra string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "forskolor.yaml")
	content := fmt.Sprintf("rootURL: %q\n%s", rootURL, extra)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// seedArchive saves one run per row set into a new archive in dbDir.
func seedArchive(t *testing.T, dbDir string, runs ...[]model.CsvRow) []int64 {
	t.Helper()

	archive, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer archive.Close()

	ids := make([]int64, 0, len(runs))
	for _, rows := range runs {
		r := model.NewRunReport("https://forskola.stockholm")
		r.PagesFetched = 56
		r.Rows = rows
		r.CSVPath = "forskolor.csv"
		id, err := archive.SaveRun(context.Background(), r)
		if err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

// executeRoot runs the root command with args and returns stdout and stderr.
func executeRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
