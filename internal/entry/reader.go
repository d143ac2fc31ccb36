// Package entry reads the flat CSV describing desired access
// relationships. The file may live on the local filesystem or in S3.
package entry

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/kazz187/repoguild/internal/grant"
	"github.com/kazz187/repoguild/pkg/cerr"
	"github.com/kazz187/repoguild/pkg/storage"
)

// Column headers recognized in the CSV, matched case-insensitively.
// Column order is free; unknown columns are ignored.
const (
	columnRepository = "repository"
	columnSubject    = "subject"
	columnRole       = "role"
	columnTeam       = "team"
)

// Read loads and parses the entries file, preserving row order. Any
// problem with the file is an InvalidInput error that aborts the run
// before grants are attempted.
func Read(ctx context.Context, path, s3Region string) ([]grant.Entry, error) {
	store, key, err := storage.Open(ctx, path, s3Region)
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidInput, fmt.Sprintf("cannot open entries file %s", path), err)
	}
	ok, err := store.Exists(ctx, key)
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidInput, fmt.Sprintf("cannot stat entries file %s", path), err)
	}
	if !ok {
		return nil, cerr.NewError(cerr.InvalidInput, fmt.Sprintf("entries file %s does not exist", path), nil)
	}
	data, err := store.Read(ctx, key)
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidInput, fmt.Sprintf("cannot read entries file %s", path), err)
	}
	entries, err := Parse(data)
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidInput, fmt.Sprintf("cannot parse entries file %s", path), err)
	}
	return entries, nil
}

// Parse decodes CSV data with a header row into entries.
func Parse(data []byte) ([]grant.Entry, error) {
	// Strip a UTF-8 BOM; spreadsheet exports often carry one.
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("malformed CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file, expected a header row")
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols[columnRepository]; !ok {
		return nil, fmt.Errorf("header row is missing the %q column", columnRepository)
	}
	_, hasTeam := cols[columnTeam]
	_, hasSubject := cols[columnSubject]
	if !hasTeam && !hasSubject {
		return nil, fmt.Errorf("header row has neither %q nor %q column, no row could name a target", columnTeam, columnSubject)
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	entries := make([]grant.Entry, 0, len(records)-1)
	for _, row := range records[1:] {
		entries = append(entries, grant.Entry{
			Repository: field(row, columnRepository),
			Subject:    field(row, columnSubject),
			Role:       field(row, columnRole),
			Team:       field(row, columnTeam),
		})
	}
	return entries, nil
}
