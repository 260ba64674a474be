package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/facet-data/exposure.report/internal/exposure"
)

// UpsertBucket writes one KPI bucket, replacing any previous row with the
// same bucket id. Recomputation is a whole-row replace, never a merge, so
// re-running an aggregation over the same range is idempotent. The row's
// computed_at_ms audit column is set here on every write.
func (db *DB) UpsertBucket(b *exposure.Bucket) error {
	breakdownJSON, err := json.Marshal(b.ContextBreakdown)
	if err != nil {
		return fmt.Errorf("encode context breakdown: %w", err)
	}

	err = retryOnBusy(func() error {
		_, err := db.Exec(`
			INSERT INTO kpi_buckets (
				bucket_id, venue_id, screen_id, bucket_start_ms, bucket_minutes,
				impressions, qualified_impressions, premium_impressions,
				unique_visitors, session_visits,
				avg_aqs, p75_aqs, total_attention_s, avg_attention_s, freq_avg,
				context_breakdown, computed_at_ms
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(bucket_id) DO UPDATE SET
				venue_id = excluded.venue_id,
				screen_id = excluded.screen_id,
				bucket_start_ms = excluded.bucket_start_ms,
				bucket_minutes = excluded.bucket_minutes,
				impressions = excluded.impressions,
				qualified_impressions = excluded.qualified_impressions,
				premium_impressions = excluded.premium_impressions,
				unique_visitors = excluded.unique_visitors,
				session_visits = excluded.session_visits,
				avg_aqs = excluded.avg_aqs,
				p75_aqs = excluded.p75_aqs,
				total_attention_s = excluded.total_attention_s,
				avg_attention_s = excluded.avg_attention_s,
				freq_avg = excluded.freq_avg,
				context_breakdown = excluded.context_breakdown,
				computed_at_ms = excluded.computed_at_ms
		`,
			b.BucketID, b.VenueID, b.ScreenID, b.BucketStartMs, b.BucketMinutes,
			b.Impressions, b.QualifiedImpr, b.PremiumImpr,
			b.UniqueVisitors, b.SessionVisits,
			nullFloat64(b.AvgAQS), nullFloat64(b.P75AQS), b.TotalAttentionS,
			nullFloat64(b.AvgAttentionS), b.FreqAvg,
			string(breakdownJSON), time.Now().UnixMilli(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert bucket %s: %w", b.BucketID, err)
	}
	return nil
}

// GetBuckets reads a screen's stored buckets with bucket_start_ms in
// [fromMs, toMs), ordered by start time. bucketMinutes > 0 restricts the
// read to one bucket size; zero or negative reads all sizes.
func (db *DB) GetBuckets(screenID string, fromMs, toMs int64, bucketMinutes int) ([]*exposure.Bucket, error) {
	query := `
		SELECT bucket_id, venue_id, screen_id, bucket_start_ms, bucket_minutes,
		       impressions, qualified_impressions, premium_impressions,
		       unique_visitors, session_visits,
		       avg_aqs, p75_aqs, total_attention_s, avg_attention_s, freq_avg,
		       context_breakdown
		FROM kpi_buckets
		WHERE screen_id = ? AND bucket_start_ms >= ? AND bucket_start_ms < ?
	`
	args := []interface{}{screenID, fromMs, toMs}
	if bucketMinutes > 0 {
		query += ` AND bucket_minutes = ?`
		args = append(args, bucketMinutes)
	}
	query += ` ORDER BY bucket_start_ms ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query buckets: %w", err)
	}
	defer rows.Close()

	var buckets []*exposure.Bucket
	for rows.Next() {
		var b exposure.Bucket
		var avgAQS, p75AQS, avgAttention sql.NullFloat64
		var breakdownJSON sql.NullString
		if err := rows.Scan(
			&b.BucketID,
			&b.VenueID,
			&b.ScreenID,
			&b.BucketStartMs,
			&b.BucketMinutes,
			&b.Impressions,
			&b.QualifiedImpr,
			&b.PremiumImpr,
			&b.UniqueVisitors,
			&b.SessionVisits,
			&avgAQS,
			&p75AQS,
			&b.TotalAttentionS,
			&avgAttention,
			&b.FreqAvg,
			&breakdownJSON,
		); err != nil {
			return nil, fmt.Errorf("scan bucket row: %w", err)
		}
		if avgAQS.Valid {
			v := avgAQS.Float64
			b.AvgAQS = &v
		}
		if p75AQS.Valid {
			v := p75AQS.Float64
			b.P75AQS = &v
		}
		if avgAttention.Valid {
			v := avgAttention.Float64
			b.AvgAttentionS = &v
		}
		if breakdownJSON.Valid {
			b.ContextBreakdown = exposure.ParseBreakdown([]byte(breakdownJSON.String))
		}
		buckets = append(buckets, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query buckets rows: %w", err)
	}
	return buckets, nil
}

func nullFloat64(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
