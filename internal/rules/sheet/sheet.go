// Package sheet loads the rule table: a TSV published from a spreadsheet,
// one condition per row, fetched over HTTP or read from disk.
package sheet

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/specklesystems/speckle-automate-checker/internal/normalize"
	"github.com/specklesystems/speckle-automate-checker/internal/rules"
)

// Column order is fixed; authoring tools may append extra columns, which
// are ignored, and may omit trailing ones, which read as empty.
const (
	colRuleNumber = iota
	colLogic
	colProperty
	colPredicate
	colValue
	colMessage
	colSeverity
)

// Load fetches the rule table at location and parses it into raw rows.
// Location is an http(s) URL or a local file path.
func Load(ctx context.Context, client *http.Client, location string) ([]rules.Row, error) {
	data, err := Fetch(ctx, client, location)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(data))
}

// Fetch returns the raw table bytes.
func Fetch(ctx context.Context, client *http.Client, location string) ([]byte, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, fmt.Errorf("rules request: %w", err)
		}
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch rules: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch rules: unexpected status %d from %s", resp.StatusCode, location)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read rules body: %w", err)
		}
		return body, nil
	}

	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return data, nil
}

// Parse splits tab-separated lines into raw rows. Line numbers are
// physical, so diagnostics point at the row the author sees. A leading
// header row is skipped; fully blank lines are dropped.
func Parse(r io.Reader) ([]rules.Row, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var rows []rules.Row
	line := 0
	sawContent := false
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		row := makeRow(line, strings.Split(text, "\t"))
		if row.Blank() {
			continue
		}
		if !sawContent {
			sawContent = true
			if isHeader(row) {
				continue
			}
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan rules: %w", err)
	}
	return rows, nil
}

func makeRow(line int, cells []string) rules.Row {
	cell := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}
	return rules.Row{
		Line:       line,
		RuleNumber: cell(colRuleNumber),
		Logic:      cell(colLogic),
		Property:   cell(colProperty),
		Predicate:  cell(colPredicate),
		Value:      cell(colValue),
		Message:    cell(colMessage),
		Severity:   cell(colSeverity),
	}
}

func isHeader(row rules.Row) bool {
	return normalize.EqualFoldTrimmed(row.Logic, "logic") ||
		normalize.EqualFoldTrimmed(row.RuleNumber, "rule number")
}
