package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// AppendLLMRequest records one LLM call.
func (s *Store) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	query, args := builder().Insert(LLMRequestsTable.Name).
		Columns("provider", "model", "purpose", "input_tokens", "output_tokens", "latency_ms",
			"success", "error_message", "request_body", "response_body", "created_at").
		Values(data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens, data.LatencyMs,
			data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody, time.Now().UTC()).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

// QueryLLMRequests returns recorded LLM calls within opts, newest first.
func (s *Store) QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error) {
	sel := builder().Select("id", "provider", "model", "purpose", "input_tokens", "output_tokens",
		"latency_ms", "success", "error_message", "request_body", "response_body", "created_at").
		From(entsql.Table(LLMRequestsTable.Name)).
		OrderBy(entsql.Desc("id"))
	if preds := timeRange("created_at", opts); len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM requests: %w", err)
	}
	defer rows.Close()

	var out []LLMRequestEventRecord
	for rows.Next() {
		var r LLMRequestEventRecord
		if err := rows.Scan(&r.ID, &r.Provider, &r.Model, &r.Purpose, &r.InputTokens, &r.OutputTokens,
			&r.LatencyMs, &r.Success, &r.ErrorMessage, &r.RequestBody, &r.ResponseBody, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan LLM request: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LLMUsage aggregates recorded calls by purpose and model.
func (s *Store) LLMUsage(ctx context.Context, opts QueryOpts) ([]LLMUsageStats, error) {
	records, err := s.QueryLLMRequests(ctx, QueryOpts{From: opts.From, To: opts.To})
	if err != nil {
		return nil, err
	}

	type key struct{ purpose, model string }
	agg := make(map[key]*LLMUsageStats)
	for _, r := range records {
		k := key{r.Purpose, r.Model}
		st, ok := agg[k]
		if !ok {
			st = &LLMUsageStats{Purpose: r.Purpose, Model: r.Model}
			agg[k] = st
		}
		st.Requests++
		if !r.Success {
			st.Failures++
		}
		st.InputTokens += r.InputTokens
		st.OutputTokens += r.OutputTokens
	}

	out := make([]LLMUsageStats, 0, len(agg))
	for _, st := range agg {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Purpose != out[j].Purpose {
			return out[i].Purpose < out[j].Purpose
		}
		return out[i].Model < out[j].Model
	})
	return out, nil
}
