package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs a machine code with a user-facing message
type ErrorInfo struct {
	Code    string // error code (see codes.go)
	Message string // user-friendly message
}

// ParseError converts low-level store/collaborator errors into an ErrorInfo.
// Sensitive details stay hidden; the message tells the user what to do next.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Something went wrong",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. GORM base errors
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// 2. PostgreSQL constraint errors

	// 2-1. Unique constraint violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// 2-2. Foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStr)
	}

	// 2-3. Not null constraint violation (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return parseNotNullError(errStr)
	}

	// 3. Network/connection errors from collaborators
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "An external service is unavailable. Please try again later",
		}
	}

	// 4. Default internal server error
	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "email") || strings.Contains(errLower, "idx_users_email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "This email address is already registered",
		}
	}

	// One document packet per cook
	if strings.Contains(errLower, "cook_id") || strings.Contains(errLower, "idx_document_packets_cook_id") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "A document packet already exists for this cook",
		}
	}

	// One unconsumed challenge per (email, purpose)
	if strings.Contains(errLower, "otp_challenges") || strings.Contains(errLower, "idx_otp_email_purpose") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "A verification code has already been issued. Use resend instead",
		}
	}

	if strings.Contains(errLower, "pkey") || strings.Contains(errLower, "primary key") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "This record already exists. Please try again",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "This record already exists",
	}
}

func parseForeignKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "still referenced") || strings.Contains(errLower, "is still referenced by") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "This record is referenced by other data and cannot be removed",
		}
	}

	if strings.Contains(errLower, "user_id") || strings.Contains(errLower, "cook_id") || strings.Contains(errLower, "fk_users") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "The referenced account does not exist",
		}
	}
	if strings.Contains(errLower, "packet_id") || strings.Contains(errLower, "fk_document_packets") {
		return ErrorInfo{
			Code:    DocPacketNotFound,
			Message: "The referenced document packet does not exist",
		}
	}

	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "Referenced data could not be found",
	}
}

func parseNotNullError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "email") {
		return ErrorInfo{Code: ValidationRequired, Message: "Email is required"}
	}
	if strings.Contains(errLower, "password") {
		return ErrorInfo{Code: ValidationRequired, Message: "Password is required"}
	}
	if strings.Contains(errLower, "name") {
		return ErrorInfo{Code: ValidationRequired, Message: "Name is required"}
	}
	if strings.Contains(errLower, "street") {
		return ErrorInfo{Code: ValidationRequired, Message: "Street address is required"}
	}

	return ErrorInfo{
		Code:    ValidationRequired,
		Message: "A required field is missing",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "cook") {
		return "Cook not found"
	}
	if strings.Contains(contextLower, "customer") {
		return "Customer not found"
	}
	if strings.Contains(contextLower, "user") || strings.Contains(contextLower, "account") {
		return "Account not found"
	}
	if strings.Contains(contextLower, "document") || strings.Contains(contextLower, "packet") {
		return "Document packet not found"
	}
	if strings.Contains(contextLower, "otp") || strings.Contains(contextLower, "challenge") {
		return "Verification code not found"
	}
	if strings.Contains(contextLower, "meal") {
		return "Meal not found"
	}

	return "The requested data could not be found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "create") || strings.Contains(contextLower, "submit") || strings.Contains(contextLower, "signup") {
		return "Something went wrong while saving. Please try again later"
	}
	if strings.Contains(contextLower, "update") || strings.Contains(contextLower, "approve") || strings.Contains(contextLower, "reject") {
		return "Something went wrong while updating. Please try again later"
	}
	if strings.Contains(contextLower, "delete") {
		return "Something went wrong while deleting. Please try again later"
	}

	return "Something went wrong. Please try again later"
}

// ParseAndRespond parses an error and writes the standard envelope.
// Convenience for controllers.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
