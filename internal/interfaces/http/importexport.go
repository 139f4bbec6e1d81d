package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/domain/account"
	"fintrack/internal/domain/importexport"
	"fintrack/internal/domain/transaction"
	"fintrack/internal/shared/logger"
)

const multipartOverhead = 1 << 20

type ImportExportHandler struct {
	importer     *importexport.Importer
	accounts     *account.Service
	transactions *transaction.Service
	log          *slog.Logger
	now          func() time.Time
}

func NewImportExportHandler(importer *importexport.Importer, accounts *account.Service, transactions *transaction.Service) *ImportExportHandler {
	return &ImportExportHandler{
		importer:     importer,
		accounts:     accounts,
		transactions: transactions,
		log:          logger.WithComponent("http.importexport"),
		now:          time.Now,
	}
}

// HandleImportCSV POST /api/import/transactions/csv
func (h *ImportExportHandler) HandleImportCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	// The body also carries part headers and form fields, so it gets some room
	// above the file limit. The file itself is checked separately.
	r.Body = http.MaxBytesReader(w, r.Body, importexport.MaxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(importexport.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "file exceeds the 10 MiB limit")
			return
		}
		writeError(w, r, h.log, badRequest("invalid multipart form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, h.log, badRequest("file is required"))
		return
	}
	defer file.Close()

	if header.Size > importexport.MaxUploadSize {
		writeMessage(w, http.StatusRequestEntityTooLarge, "file exceeds the 10 MiB limit")
		return
	}

	var accountID *int64
	if v := r.FormValue("account_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, r, h.log, badRequest("invalid account_id"))
			return
		}
		accountID = &id
	}

	res, err := h.importer.ImportCSV(r.Context(), userID, file, accountID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleTemplate GET /api/import/template
func (h *ImportExportHandler) HandleTemplate(w http.ResponseWriter, r *http.Request) {
	setAttachment(w, "text/csv", "transactions_template.csv")
	if err := importexport.WriteTemplate(w); err != nil {
		h.log.ErrorContext(r.Context(), "failed to write import template", logger.Err(err))
	}
}

// HandleExportTransactionsCSV GET /api/export/transactions/csv
func (h *ImportExportHandler) HandleExportTransactionsCSV(w http.ResponseWriter, r *http.Request) {
	txns, ok := h.exportTransactions(w, r)
	if !ok {
		return
	}

	setAttachment(w, "text/csv", importexport.Filename("transactions", "csv", h.now()))
	if err := importexport.WriteTransactionsCSV(w, txns); err != nil {
		h.log.ErrorContext(r.Context(), "failed to stream transactions csv", logger.Err(err))
	}
}

// HandleExportTransactionsJSON GET /api/export/transactions/json
func (h *ImportExportHandler) HandleExportTransactionsJSON(w http.ResponseWriter, r *http.Request) {
	txns, ok := h.exportTransactions(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+importexport.Filename("transactions", "json", h.now())+`"`)
	writeJSON(w, http.StatusOK, txns)
}

// HandleExportAccountsCSV GET /api/export/accounts/csv
func (h *ImportExportHandler) HandleExportAccountsCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	accounts, err := h.accounts.ListAccounts(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	setAttachment(w, "text/csv", importexport.Filename("accounts", "csv", h.now()))
	if err := importexport.WriteAccountsCSV(w, accounts); err != nil {
		h.log.ErrorContext(r.Context(), "failed to stream accounts csv", logger.Err(err))
	}
}

func (h *ImportExportHandler) exportTransactions(w http.ResponseWriter, r *http.Request) ([]*transaction.Transaction, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return nil, false
	}

	filter, err := transaction.FilterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, h.log, err)
		return nil, false
	}

	txns, err := h.transactions.ExportTransactions(r.Context(), userID, filter)
	if err != nil {
		writeError(w, r, h.log, err)
		return nil, false
	}
	return txns, true
}

func setAttachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}
