package server

import (
	"github.com/refaudit/citation-verification-service/internal/domain"
)

// Response types for JSON serialization.

type verifyResponse struct {
	BatchID string          `json:"batch_id"`
	Results []domain.Result `json:"results"`
	Summary summaryResponse `json:"summary"`
}

type summaryResponse struct {
	Total                    int            `json:"total"`
	ByStatus                 map[string]int `json:"by_status"`
	MeanExtractionConfidence float64        `json:"mean_extraction_confidence"`
	ElapsedMS                int64          `json:"elapsed_ms"`
}

// batchToResponse converts a batch result for the wire. Per-citation
// results marshal directly; only the summary needs reshaping (string
// status keys, milliseconds instead of nanoseconds).
func batchToResponse(batch domain.BatchResult) verifyResponse {
	byStatus := make(map[string]int, len(batch.Summary.ByStatus))
	for status, count := range batch.Summary.ByStatus {
		byStatus[string(status)] = count
	}
	results := batch.Results
	if results == nil {
		results = []domain.Result{}
	}
	return verifyResponse{
		BatchID: batch.Summary.BatchID.String(),
		Results: results,
		Summary: summaryResponse{
			Total:                    batch.Summary.Total,
			ByStatus:                 byStatus,
			MeanExtractionConfidence: batch.Summary.MeanExtractionConfidence,
			ElapsedMS:                batch.Summary.Elapsed.Milliseconds(),
		},
	}
}
