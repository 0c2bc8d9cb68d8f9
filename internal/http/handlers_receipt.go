package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"monetra/internal/core"
	"monetra/internal/scan"
)

type uploadResponse struct {
	ReceiptID   string           `json:"receipt_id"`
	Filename    string           `json:"filename"`
	ContentType string           `json:"content_type"`
	Size        int64            `json:"size"`
	QRFound     bool             `json:"qr_found"`
	QRInfo      *scan.QRInfo     `json:"qr_info,omitempty"`
	Suggestion  *scan.Suggestion `json:"suggestion,omitempty"`
}

func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptBytes)
	if err := r.ParseMultipartForm(maxReceiptBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("receipt exceeds %d bytes", int64(maxReceiptBytes)))
			return
		}
		writeError(w, r, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	info, err := s.receipts.Save(r.Context(), header.Filename, contentType, file)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := uploadResponse{
		ReceiptID:   info.ID,
		Filename:    info.Filename,
		ContentType: info.ContentType,
		Size:        info.Size,
	}

	// Attach to an existing transaction when requested.
	if txID := strings.TrimSpace(r.FormValue("transaction_id")); txID != "" {
		if _, err := s.transactions.AttachReceipt(r.Context(), txID, info.ID); err != nil {
			writeDomainError(w, r, err)
			return
		}
	}

	// Scan is best effort: a failed or absent scan still stores the blob.
	if s.scanner != nil {
		if payload := s.scanReceipt(r, info.ID, contentType); payload != "" {
			qr := scan.ParsePayload(payload)
			suggestion := scan.BuildSuggestion(qr, core.Today())
			resp.QRFound = true
			resp.QRInfo = &qr
			resp.Suggestion = &suggestion
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) scanReceipt(r *http.Request, receiptID, contentType string) string {
	blob, _, err := s.receipts.Open(r.Context(), receiptID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to reopen receipt for scan",
			"receipt_id", receiptID, "error", err)
		return ""
	}
	defer blob.Close()

	payload, err := s.scanner.ScanQR(r.Context(), blob, contentType)
	if err != nil {
		slog.WarnContext(r.Context(), "QR scan failed",
			"receipt_id", receiptID, "error", err)
		return ""
	}
	return payload
}

func (s *Server) handleDownloadReceipt(w http.ResponseWriter, r *http.Request) {
	blob, info, err := s.receipts.Open(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	defer blob.Close()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", info.Filename))
	if info.Size > 0 {
		w.Header().Set("Content-Length", fmt.Sprint(info.Size))
	}
	if _, err := io.Copy(w, blob); err != nil {
		slog.ErrorContext(r.Context(), "Failed to stream receipt",
			"receipt_id", info.ID, "error", err)
	}
}

func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.receipts.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	// Detach from any transaction still pointing at the blob.
	if err := s.transactions.DetachReceipt(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
