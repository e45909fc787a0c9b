// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dupcheck

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/archive-scout/pkg/types"
)

// FormatTable writes a report as a human-readable table to w.
func FormatTable(report *Report, w io.Writer) {
	fmt.Fprintf(w, "%-24s  %-8s  %s\n", "Result set", "Matches", "Proposals")
	fmt.Fprintln(w, strings.Repeat("-", 60))

	for _, key := range report.Order {
		rows := report.Targets[key]
		fmt.Fprintf(w, "%-24s  %-8d  %s\n",
			truncate(key, 24), len(rows), rowProposals(rows, 4))
	}

	if report.TotalRows() == 0 {
		fmt.Fprintln(w, "\nNo overlapping observations found within the configured bounds.")
		return
	}

	fmt.Fprintf(w, "\nConflicting proposal IDs:    %s\n", joinInts(report.ProposalIDs))
	fmt.Fprintf(w, "Conflicting observation IDs: %s\n", strings.Join(report.ObservationIDs, ", "))
}

// FormatJSON writes a report as indented JSON to w.
func FormatJSON(report *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// rowProposals summarizes the distinct proposal IDs in one result set,
// eliding after max entries.
func rowProposals(rows []types.Record, max int) string {
	set := newOrderedIntSet()
	for _, row := range rows {
		if id, err := row.ProposalID(); err == nil {
			set.add(id)
		}
	}
	if len(set.values) == 0 {
		return "-"
	}
	ids := set.values
	elided := false
	if len(ids) > max {
		ids = ids[:max]
		elided = true
	}
	s := joinInts(ids)
	if elided {
		s += ", ..."
	}
	return s
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
