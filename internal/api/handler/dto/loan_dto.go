package dto

import (
	"encoding/json"
	"fmt"
	"loan-service/internal/domain/loan"
	"math"
	"regexp"

	"github.com/shopspring/decimal"
)

const CodeValidationError = "VALIDATION_ERROR"

var loanIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// maxInteger bounds amount and income so they fit the stored int64.
var maxInteger = decimal.NewFromInt(math.MaxInt64)

// LoanRequest is the body accepted by create and update. Fields are decoded loosely
// so type mismatches are reported per field instead of failing the whole body.
// Caller-supplied _id and monthlyPayment are accepted and ignored.
type LoanRequest struct {
	ID             any `json:"_id,omitempty" swaggerignore:"true"`
	Name           any `json:"name" swaggertype:"string" example:"Test User"`
	Amount         any `json:"amount" swaggertype:"integer" example:"5000"`
	Type           any `json:"type" swaggertype:"string" enums:"Home,Car,Personal" example:"Personal"`
	Income         any `json:"income" swaggertype:"integer" example:"50000"`
	InterestRate   any `json:"interestRate" swaggertype:"number" example:"15"`
	MonthlyPayment any `json:"monthlyPayment,omitempty" swaggerignore:"true"`
}

// FieldError mirrors one failed property with the rules it broke.
type FieldError struct {
	Property    string            `json:"property"`
	Constraints map[string]string `json:"constraints"`
}

func (r *LoanRequest) Validate() []FieldError {
	var errs []FieldError
	add := func(property string, constraints map[string]string) {
		if len(constraints) > 0 {
			errs = append(errs, FieldError{Property: property, Constraints: constraints})
		}
	}

	add("name", checkRequired(r.Name, "Name is required"))
	add("amount", checkInteger(r.Amount, "Amount", decimal.NewFromInt(1)))

	typeRules := checkRequired(r.Type, "Type is required")
	if s, ok := r.Type.(string); !ok || !loan.LoanType(s).IsKnown() {
		typeRules = withRule(typeRules, "isEnum", "Type must be one of 'Home', 'Car', 'Personal'")
	}
	add("type", typeRules)

	add("income", checkInteger(r.Income, "Income", decimal.NewFromInt(1)))

	rateRules := checkRequired(r.InterestRate, "Interest rate is required")
	rate, isNumber := asDecimal(r.InterestRate)
	if !isNumber {
		rateRules = withRule(rateRules, "isNumber", "Interest rate must be a number")
	}
	if !isNumber || rate.LessThan(decimal.Zero) {
		rateRules = withRule(rateRules, "min", "Interest rate must be greater than zero")
	}
	add("interestRate", rateRules)

	return errs
}

// ToDomain converts a request that passed Validate.
func (r *LoanRequest) ToDomain() *loan.Loan {
	amount, _ := asDecimal(r.Amount)
	income, _ := asDecimal(r.Income)
	rate, _ := asDecimal(r.InterestRate)
	interestRate, _ := rate.Float64()

	return &loan.Loan{
		Name:         asString(r.Name),
		Amount:       amount.IntPart(),
		Type:         loan.LoanType(asString(r.Type)),
		Income:       income.IntPart(),
		InterestRate: interestRate,
	}
}

func ValidateLoanID(id string) []FieldError {
	if loanIDPattern.MatchString(id) {
		return nil
	}
	return []FieldError{{
		Property: "id",
		Constraints: map[string]string{
			"matches": "ID must contain only letters, numbers, underscores, and hyphens",
		},
	}}
}

func checkRequired(v any, message string) map[string]string {
	if v == nil {
		return map[string]string{"isNotEmpty": message}
	}
	if s, ok := v.(string); ok && s == "" {
		return map[string]string{"isNotEmpty": message}
	}
	return nil
}

func checkInteger(v any, label string, min decimal.Decimal) map[string]string {
	rules := checkRequired(v, label+" is required")
	d, isNumber := asDecimal(v)
	if !isNumber || !d.IsInteger() {
		rules = withRule(rules, "isInt", label+" must be an integer")
	}
	if !isNumber || d.LessThan(min) {
		rules = withRule(rules, "min", label+" must be greater than zero")
	}
	if isNumber && d.GreaterThan(maxInteger) {
		rules = withRule(rules, "max", label+" must not be greater than "+maxInteger.String())
	}
	return rules
}

func withRule(rules map[string]string, rule, message string) map[string]string {
	if rules == nil {
		rules = make(map[string]string)
	}
	rules[rule] = message
	return rules
}

// asDecimal accepts JSON numbers only; numeric strings are rejected.
func asDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	default:
		return decimal.Decimal{}, false
	}
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

type LoanResponse struct {
	ID             string   `json:"_id" example:"3f1c2d7e-9a4b-4c1e-8f7a-2b6d5e4c3a21"`
	Name           string   `json:"name" example:"Test User"`
	Amount         int64    `json:"amount" example:"5000"`
	Type           string   `json:"type" example:"Personal"`
	Income         int64    `json:"income" example:"50000"`
	InterestRate   float64  `json:"interestRate" example:"15"`
	MonthlyPayment *float64 `json:"monthlyPayment,omitempty" example:"118.95"`
}

func NewLoanResponse(l *loan.Loan) *LoanResponse {
	if l == nil {
		return nil
	}
	return &LoanResponse{
		ID:             l.ID,
		Name:           l.Name,
		Amount:         l.Amount,
		Type:           string(l.Type),
		Income:         l.Income,
		InterestRate:   l.InterestRate,
		MonthlyPayment: l.MonthlyPayment,
	}
}

type LoanListResponse struct {
	Success bool           `json:"success" example:"true"`
	Loans   []LoanResponse `json:"loans"`
}

func NewLoanListResponse(loans []*loan.Loan) LoanListResponse {
	resp := LoanListResponse{Success: true, Loans: make([]LoanResponse, 0, len(loans))}
	for _, l := range loans {
		resp.Loans = append(resp.Loans, *NewLoanResponse(l))
	}
	return resp
}

type LoanEnvelopeResponse struct {
	Success bool          `json:"success" example:"true"`
	Message string        `json:"message,omitempty" example:"Loan created successfully"`
	Loan    *LoanResponse `json:"loan,omitempty"`
}

// ServiceError is one business rule or store failure reported by the loan service.
type ServiceError struct {
	Message string `json:"message" example:"Personal loan amount must be between $1000 and $20000"`
	Code    string `json:"code,omitempty" example:"INVALID_PERSONAL_LOAN_AMOUNT"`
}

func NewServiceErrors(errs []loan.ValidationError) []ServiceError {
	out := make([]ServiceError, 0, len(errs))
	for _, e := range errs {
		out = append(out, ServiceError{Message: e.Message, Code: e.Code})
	}
	return out
}

// FailureResponse is returned for every non-2xx loan response other than
// generic server errors.
type FailureResponse struct {
	Success bool   `json:"success" example:"false"`
	Code    string `json:"code,omitempty" example:"VALIDATION_ERROR"`
	Message string `json:"message,omitempty"`
	Errors  any    `json:"errors,omitempty" swaggertype:"array,object"`
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Success bool        `json:"success" example:"false"`
	Error   ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username" example:"jane"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
