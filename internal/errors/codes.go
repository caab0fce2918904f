package errors

// Error code constants
// Format: CATEGORY_SPECIFIC_DETAIL
// Front ends map these codes to localized messages

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // malformed/forged token
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"       // token blacklisted after sign-out
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // duplicate email
	AuthAccountSuspended   = "AUTH_ACCOUNT_SUSPENDED"   // account suspended, sign-in blocked
	AuthEmailUndeliverable = "AUTH_EMAIL_UNDELIVERABLE" // deliverability check failed

	// ==================== OTP (OTP_) ====================
	OtpInvalid         = "OTP_INVALID"           // wrong code, wrong purpose, or already used
	OtpExpired         = "OTP_EXPIRED"           // code past its expiry
	OtpNoPendingSignup = "OTP_NO_PENDING_SIGNUP" // resend without an active challenge
	OtpDeliveryFailed  = "OTP_DELIVERY_FAILED"   // mailer failure, challenge rolled back

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"      // no access
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"     // admins only
	AuthzCookOnly     = "AUTHZ_COOK_ONLY"      // cooks only
	AuthzNotVerified  = "AUTHZ_NOT_VERIFIED"   // cook not verified yet
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND" // no role in context

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // bad input shape
	ValidationInvalidID     = "VALIDATION_INVALID_ID"     // bad id
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT" // bad format
	ValidationRequired      = "VALIDATION_REQUIRED"       // missing required field

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // no such entity
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // duplicate
	ResourceConflict      = "RESOURCE_CONFLICT"       // state conflict

	// ==================== Documents (DOC_) ====================
	DocMissingRequired      = "DOC_MISSING_REQUIRED"      // CNIC sides or kitchen photos absent
	DocAlreadyApproved      = "DOC_ALREADY_APPROVED"      // double approval attempt
	DocIncompleteSubmission = "DOC_INCOMPLETE_SUBMISSION" // approve-all preconditions unmet
	DocInvalidField         = "DOC_INVALID_FIELD"         // unknown document slot
	DocInvalidIndex         = "DOC_INVALID_INDEX"         // kitchen photo index out of range
	DocPacketNotFound       = "DOC_PACKET_NOT_FOUND"      // cook has not submitted yet

	// ==================== Account status (ACCOUNT_) ====================
	AccountReasonRequired   = "ACCOUNT_REASON_REQUIRED"   // suspension without a reason
	AccountAlreadySuspended = "ACCOUNT_ALREADY_SUSPENDED" // no-op suspend
	AccountAlreadyActive    = "ACCOUNT_ALREADY_ACTIVE"    // no-op activate

	// ==================== Meals (MEAL_) ====================
	MealNotFound     = "MEAL_NOT_FOUND"     // no such meal
	MealNotOwner     = "MEAL_NOT_OWNER"     // meal belongs to another cook
	MealInvalidPrice = "MEAL_INVALID_PRICE" // non-positive price

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE" // not an allowed image type
	UploadFailed          = "UPLOAD_FAILED"            // presign failure

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // unexpected failure
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // store failure
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // collaborator failure
)
