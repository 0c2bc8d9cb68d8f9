package http

import "net/http"

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.tracer.GetMetrics()
	limitMetrics := s.limiter.GetMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"total_requests":           traceMetrics.TotalRequests,
		"average_response_time_us": traceMetrics.AverageResponseTime,
		"rate_limited_clients":     limitMetrics.ClientCount,
	})
}
