package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the base interface for all application errors
type AppError interface {
	error
	HTTPStatus() int
	Code() string
}

// NotFoundError represents a resource that was not found
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}

func (e *NotFoundError) Code() string {
	return "NOT_FOUND"
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// InvalidTransitionError is returned by the transition guard when a status
// change is not in the configured successor set for the document type.
type InvalidTransitionError struct {
	DocumentType string
	From         string
	To           string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition for %s: cannot move from '%s' to '%s'", e.DocumentType, e.From, e.To)
}

func (e *InvalidTransitionError) HTTPStatus() int {
	return http.StatusUnprocessableEntity
}

func (e *InvalidTransitionError) Code() string {
	return "INVALID_TRANSITION"
}

// NewInvalidTransitionError creates a new InvalidTransitionError
func NewInvalidTransitionError(docType, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{DocumentType: docType, From: from, To: to}
}

// BusinessRuleError represents a type-specific precondition failure.
// Rule carries a stable identifier for UI and test matching.
type BusinessRuleError struct {
	Rule    string
	Message string
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violated (%s): %s", e.Rule, e.Message)
}

func (e *BusinessRuleError) HTTPStatus() int {
	return http.StatusUnprocessableEntity
}

func (e *BusinessRuleError) Code() string {
	return "BUSINESS_RULE_VIOLATION"
}

// NewBusinessRuleError creates a new BusinessRuleError
func NewBusinessRuleError(rule, message string) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message}
}

// NoMatchingRuleError signals an amount with no covering approval workflow
// rule range. This is a configuration gap and must never be defaulted away.
type NoMatchingRuleError struct {
	DocumentType string
	Amount       float64
}

func (e *NoMatchingRuleError) Error() string {
	return fmt.Sprintf("no approval workflow rule for %s covers amount %.2f", e.DocumentType, e.Amount)
}

func (e *NoMatchingRuleError) HTTPStatus() int {
	return http.StatusUnprocessableEntity
}

func (e *NoMatchingRuleError) Code() string {
	return "NO_MATCHING_RULE"
}

// NewNoMatchingRuleError creates a new NoMatchingRuleError
func NewNoMatchingRuleError(docType string, amount float64) *NoMatchingRuleError {
	return &NoMatchingRuleError{DocumentType: docType, Amount: amount}
}

// AlreadyPausedError rejects a stop-clock pause on a record that is
// already paused. Callers must resume first.
type AlreadyPausedError struct {
	DocumentID string
}

func (e *AlreadyPausedError) Error() string {
	return fmt.Sprintf("SLA clock for document '%s' is already paused", e.DocumentID)
}

func (e *AlreadyPausedError) HTTPStatus() int {
	return http.StatusConflict
}

func (e *AlreadyPausedError) Code() string {
	return "ALREADY_PAUSED"
}

// NewAlreadyPausedError creates a new AlreadyPausedError
func NewAlreadyPausedError(documentID string) *AlreadyPausedError {
	return &AlreadyPausedError{DocumentID: documentID}
}

// AlreadyRespondedError rejects a duplicate response from the same approver
// within one parallel approval group.
type AlreadyRespondedError struct {
	GroupID    string
	ApproverID string
}

func (e *AlreadyRespondedError) Error() string {
	return fmt.Sprintf("approver '%s' already responded to group '%s'", e.ApproverID, e.GroupID)
}

func (e *AlreadyRespondedError) HTTPStatus() int {
	return http.StatusConflict
}

func (e *AlreadyRespondedError) Code() string {
	return "ALREADY_RESPONDED"
}

// NewAlreadyRespondedError creates a new AlreadyRespondedError
func NewAlreadyRespondedError(groupID, approverID string) *AlreadyRespondedError {
	return &AlreadyRespondedError{GroupID: groupID, ApproverID: approverID}
}

// GroupResolvedError rejects responses arriving after a parallel approval
// group resolved. Late responses are stale, not errors to retry.
type GroupResolvedError struct {
	GroupID string
	Status  string
}

func (e *GroupResolvedError) Error() string {
	return fmt.Sprintf("approval group '%s' already resolved as %s", e.GroupID, e.Status)
}

func (e *GroupResolvedError) HTTPStatus() int {
	return http.StatusConflict
}

func (e *GroupResolvedError) Code() string {
	return "GROUP_RESOLVED"
}

// NewGroupResolvedError creates a new GroupResolvedError
func NewGroupResolvedError(groupID, status string) *GroupResolvedError {
	return &GroupResolvedError{GroupID: groupID, Status: status}
}

// ConflictError represents a concurrent modification detected by the
// optimistic version check. Callers should reload and retry.
type ConflictError struct {
	Resource string
	ID       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s '%s' was modified concurrently, reload and retry", e.Resource, e.ID)
}

func (e *ConflictError) HTTPStatus() int {
	return http.StatusConflict
}

func (e *ConflictError) Code() string {
	return "CONFLICT"
}

// NewConflictError creates a new ConflictError
func NewConflictError(resource, id string) *ConflictError {
	return &ConflictError{Resource: resource, ID: id}
}

// ValidationError represents invalid input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) HTTPStatus() int {
	return http.StatusBadRequest
}

func (e *ValidationError) Code() string {
	return "VALIDATION_ERROR"
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// UnauthorizedError represents authentication failures
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unauthorized: %s", e.Reason)
	}
	return "unauthorized"
}

func (e *UnauthorizedError) HTTPStatus() int {
	return http.StatusUnauthorized
}

func (e *UnauthorizedError) Code() string {
	return "UNAUTHORIZED"
}

// NewUnauthorizedError creates a new UnauthorizedError
func NewUnauthorizedError(reason string) *UnauthorizedError {
	return &UnauthorizedError{Reason: reason}
}

// InternalError represents unexpected server errors
type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("internal error: %s (caused by: %v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("internal error: %s", e.Message)
}

func (e *InternalError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *InternalError) Code() string {
	return "INTERNAL_ERROR"
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{Message: message, Cause: cause}
}

// Helper functions for error checking

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// IsInvalidTransition checks if an error is an InvalidTransitionError
func IsInvalidTransition(err error) bool {
	var invalid *InvalidTransitionError
	return errors.As(err, &invalid)
}

// IsBusinessRule checks if an error is a BusinessRuleError
func IsBusinessRule(err error) bool {
	var rule *BusinessRuleError
	return errors.As(err, &rule)
}

// IsConflict checks if an error is a ConflictError
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}

// GetHTTPStatus returns the HTTP status code for an error
// Returns 500 if the error doesn't implement AppError
func GetHTTPStatus(err error) int {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// GetErrorCode returns the error code for an error
// Returns "UNKNOWN_ERROR" if the error doesn't implement AppError
func GetErrorCode(err error) string {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return "UNKNOWN_ERROR"
}
