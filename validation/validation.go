package validation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
)

const (
	passwordSymbols = `!@#$%^&*()_+{}":?><`

	maxEmail    = 254
	minUsername = 5
	maxUsername = 50
	minName     = 2
	maxName     = 55
	maxBio      = 500
	minPassword = 6
	maxPassword = 35
	maxTitle    = 255
	maxComment  = 500
	maxTagName  = 100
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+'-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}_.]+$`) // letters and digits of any script
)

// FieldError is a single validation failure tied to a request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors collects field errors in the order they were found.
type Errors []FieldError

func (e *Errors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Err returns the first error as an API validation error, or nil when empty.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return errs.NewValidationError(e[0].Field, e[0].Message)
}

// UniquenessChecker answers the store lookups registration needs.
type UniquenessChecker interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// ValidateRegistration runs the field checks in declaration order and then
// the cross field password checks. Lookup failures are returned as err.
func ValidateRegistration(ctx context.Context, req models.RegisterRequest, checker UniquenessChecker) (Errors, error) {
	var v Errors

	email := models.NormalizeEmail(req.Email)
	switch {
	case email == "":
		v.Add("email", "This field is required.")
	case utf8.RuneCountInString(email) > maxEmail:
		v.Add("email", fmt.Sprintf("Ensure this field has no more than %d characters.", maxEmail))
	case !emailRegex.MatchString(email):
		v.Add("email", "Enter a valid email address.")
	default:
		exists, err := checker.EmailExists(ctx, email)
		if err != nil {
			return nil, err
		}
		if exists {
			v.Add("email", "user with this email already exists.")
		}
	}

	if checkLength(&v, "username", req.Username, minUsername, maxUsername, true) {
		if !usernameRegex.MatchString(req.Username) {
			v.Add("username", "Username should only contain alphabets, numbers, underscores, or periods.")
		} else {
			exists, err := checker.UsernameExists(ctx, req.Username)
			if err != nil {
				return nil, err
			}
			if exists {
				v.Add("username", "user with this username already exists.")
			}
		}
	}

	checkLength(&v, "first_name", req.FirstName, minName, maxName, true)
	checkLength(&v, "last_name", req.LastName, minName, maxName, true)
	checkLength(&v, "bio", req.Bio, 0, maxBio, false)
	checkLength(&v, "password", req.Password, minPassword, maxPassword, true)
	if req.ConfirmPassword == "" {
		v.Add("confirm_password", "This field is required.")
	}

	if len(v) > 0 {
		return v, nil
	}

	if !PasswordIsComplex(req.Password) {
		v.Add("password", "Password must contain at least one uppercase, one lowercase, one number, and one special character, and be between 5 and 35 characters long.")
	} else if req.Password != req.ConfirmPassword {
		v.Add("confirm_password", "Passwords do not match.")
	}
	return v, nil
}

// PasswordIsComplex requires a digit, a lowercase and an uppercase letter and
// one of the allowed symbols, with no other characters, 5 to 35 long.
func PasswordIsComplex(password string) bool {
	n := utf8.RuneCountInString(password)
	if n < 5 || n > 35 {
		return false
	}

	var digit, lower, upper, symbol bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		default:
			return false
		}
	}
	return digit && lower && upper && symbol
}

// ValidateLogin only checks presence; credentials are checked by the caller.
func ValidateLogin(req models.LoginRequest) Errors {
	var v Errors
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		v.Add("non_field_errors", "Email and password are required")
	}
	return v
}

// ValidateProfileUpdate checks a profile update. With partial false the name
// fields are required.
func ValidateProfileUpdate(req models.ProfileUpdateRequest, partial bool) Errors {
	var v Errors
	checkOptional(&v, "first_name", req.FirstName, minName, maxName, !partial)
	checkOptional(&v, "last_name", req.LastName, minName, maxName, !partial)
	if req.Bio != nil {
		checkLength(&v, "bio", *req.Bio, 0, maxBio, false)
	}
	return v
}

// ValidateBlogPost checks a create or update payload. With partial false
// title and content are required.
func ValidateBlogPost(req models.BlogPostRequest, partial bool) Errors {
	var v Errors
	checkOptional(&v, "title", req.Title, 1, maxTitle, !partial)
	if req.Content == nil {
		if !partial {
			v.Add("content", "This field is required.")
		}
	} else if strings.TrimSpace(*req.Content) == "" {
		v.Add("content", "This field may not be blank.")
	}
	return v
}

func ValidateComment(req models.CommentRequest, partial bool) Errors {
	var v Errors
	checkOptional(&v, "content", req.Content, 1, maxComment, !partial)
	return v
}

func ValidateTag(req models.TagRequest) Errors {
	var v Errors
	checkLength(&v, "name", req.Name, 1, maxTagName, true)
	return v
}

func checkOptional(v *Errors, field string, value *string, min, max int, required bool) {
	if value == nil {
		if required {
			v.Add(field, "This field is required.")
		}
		return
	}
	checkLength(v, field, *value, min, max, true)
}

// checkLength reports whether value passed. Required fields reject blank
// values; optional fields accept the empty string.
func checkLength(v *Errors, field, value string, min, max int, required bool) bool {
	if strings.TrimSpace(value) == "" {
		if required {
			v.Add(field, "This field may not be blank.")
			return false
		}
		return true
	}

	n := utf8.RuneCountInString(value)
	if n < min {
		v.Add(field, fmt.Sprintf("Ensure this field has at least %d characters.", min))
		return false
	}
	if n > max {
		v.Add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", max))
		return false
	}
	return true
}
