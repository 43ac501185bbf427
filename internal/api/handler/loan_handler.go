package handler

import (
	"loan-service/internal/api/handler/dto"
	"loan-service/internal/domain/loan"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const (
	codeLoanUpdateFailed = "LOAN_UPDATE_FAILED"
	codeLoanDeleteFailed = "LOAN_DELETE_FAILED"

	messageUpdateFailed = "Loan could not be updated. Either the loan was not found or something went wrong."
	messageDeleteFailed = "Loan could not be deleted. Either the loan was not found or something went wrong."
)

type LoanHandler struct {
	service loan.LoanService
	logger  *slog.Logger
}

func NewLoanHandler(s loan.LoanService, l *slog.Logger) *LoanHandler {
	return &LoanHandler{
		service: s,
		logger:  l.With("component", "LoanHandler"),
	}
}

// loanIDFromURL returns the path id, or writes a 400 and returns false.
func loanIDFromURL(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if errs := dto.ValidateLoanID(id); len(errs) > 0 {
		respondValidation(w, errs)
		return "", false
	}
	return id, true
}

// decodeLoanRequest reads and validates the body, or writes a 400 and returns nil.
func (h *LoanHandler) decodeLoanRequest(w http.ResponseWriter, r *http.Request) *loan.Loan {
	var req dto.LoanRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode loan request", "error", err)
		respondError(w, invalidBody(err))
		return nil
	}
	if errs := req.Validate(); len(errs) > 0 {
		respondValidation(w, errs)
		return nil
	}
	return req.ToDomain()
}

// GetAllLoans lists every stored loan.
//
// @Summary List loans
// @Description Returns every stored loan in store order.
// @Tags Loans
// @Produce json
// @Success 200 {object} dto.LoanListResponse "All loans"
// @Failure 500 {object} dto.ErrorResponse "Storage failure"
// @Router /loans [get]
// @Security BearerAuth
func (h *LoanHandler) GetAllLoans(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetAllLoans(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanListResponse(result.Loans))
}

// GetLoanByID retrieves a single loan.
//
// @Summary Retrieve a loan
// @Description Returns the loan with the given id.
// @Tags Loans
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} dto.LoanEnvelopeResponse "Loan found"
// @Failure 400 {object} dto.FailureResponse "Invalid loan ID"
// @Failure 404 {object} dto.FailureResponse "Loan not found"
// @Router /loans/{id} [get]
// @Security BearerAuth
func (h *LoanHandler) GetLoanByID(w http.ResponseWriter, r *http.Request) {
	id, ok := loanIDFromURL(w, r)
	if !ok {
		return
	}

	result, err := h.service.GetLoanByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if !result.Success {
		respondJSON(w, http.StatusNotFound, dto.FailureResponse{Success: false, Message: loan.MessageNotFound})
		return
	}
	respondJSON(w, http.StatusOK, dto.LoanEnvelopeResponse{Success: true, Loan: dto.NewLoanResponse(result.Loan)})
}

// CreateLoan validates and stores a new loan.
//
// @Summary Create a loan
// @Description Validates the loan against the per-type business ranges, computes the monthly payment and stores it. Unknown body fields other than _id and monthlyPayment are rejected with 400.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.LoanRequest true "Loan payload"
// @Success 201 {object} dto.LoanEnvelopeResponse "Loan created"
// @Failure 400 {object} dto.FailureResponse "Invalid payload or business rule violation"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [post]
// @Security BearerAuth
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	candidate := h.decodeLoanRequest(w, r)
	if candidate == nil {
		return
	}

	result, err := h.service.CreateLoan(r.Context(), candidate)
	if err != nil {
		respondError(w, err)
		return
	}
	if !result.Success {
		respondValidation(w, dto.NewServiceErrors(result.Errors))
		return
	}
	respondJSON(w, http.StatusCreated, dto.LoanEnvelopeResponse{
		Success: true,
		Message: result.Message,
		Loan:    dto.NewLoanResponse(result.Loan),
	})
}

// UpdateLoan replaces a stored loan.
//
// @Summary Update a loan
// @Description Validates the loan, recomputes the monthly payment and replaces the stored record. Unknown body fields other than _id and monthlyPayment are rejected with 400.
// @Tags Loans
// @Accept json
// @Produce json
// @Param id path string true "Loan ID"
// @Param request body dto.LoanRequest true "Loan payload"
// @Success 200 {object} dto.LoanEnvelopeResponse "Loan updated"
// @Failure 400 {object} dto.FailureResponse "Invalid payload or business rule violation"
// @Failure 404 {object} dto.FailureResponse "Loan could not be updated"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{id} [put]
// @Security BearerAuth
func (h *LoanHandler) UpdateLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := loanIDFromURL(w, r)
	if !ok {
		return
	}
	candidate := h.decodeLoanRequest(w, r)
	if candidate == nil {
		return
	}

	result, err := h.service.UpdateLoan(r.Context(), id, candidate)
	if err != nil {
		respondError(w, err)
		return
	}
	if !result.Success {
		if len(result.Errors) > 0 && result.Errors[0].Code == loan.CodeUpdateFailed {
			respondJSON(w, http.StatusNotFound, dto.FailureResponse{Success: false, Code: codeLoanUpdateFailed, Message: messageUpdateFailed})
			return
		}
		respondValidation(w, dto.NewServiceErrors(result.Errors))
		return
	}
	respondJSON(w, http.StatusOK, dto.LoanEnvelopeResponse{
		Success: true,
		Message: result.Message,
		Loan:    dto.NewLoanResponse(result.Loan),
	})
}

// DeleteLoan removes a stored loan.
//
// @Summary Delete a loan
// @Tags Loans
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} dto.LoanEnvelopeResponse "Loan deleted"
// @Failure 400 {object} dto.FailureResponse "Invalid loan ID"
// @Failure 404 {object} dto.FailureResponse "Loan could not be deleted"
// @Router /loans/{id} [delete]
// @Security BearerAuth
func (h *LoanHandler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := loanIDFromURL(w, r)
	if !ok {
		return
	}

	result, err := h.service.DeleteLoan(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if !result.Success {
		if len(result.Errors) > 0 && result.Errors[0].Code == loan.CodeDeleteFailed {
			respondJSON(w, http.StatusNotFound, dto.FailureResponse{Success: false, Code: codeLoanDeleteFailed, Message: messageDeleteFailed})
			return
		}
		respondValidation(w, dto.NewServiceErrors(result.Errors))
		return
	}
	respondJSON(w, http.StatusOK, dto.LoanEnvelopeResponse{Success: true, Message: result.Message})
}
