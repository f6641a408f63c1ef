package validation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
)

type fakeChecker struct {
	emails    map[string]bool
	usernames map[string]bool
	err       error
}

func (f fakeChecker) EmailExists(ctx context.Context, email string) (bool, error) {
	return f.emails[email], f.err
}

func (f fakeChecker) UsernameExists(ctx context.Context, username string) (bool, error) {
	return f.usernames[username], f.err
}

func validRegistration() models.RegisterRequest {
	return models.RegisterRequest{
		Email:           "ada@example.com",
		Username:        "ada.lovelace",
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Password:        "Abcdef1!",
		ConfirmPassword: "Abcdef1!",
	}
}

func TestValidateRegistration(t *testing.T) {
	taken := fakeChecker{
		emails:    map[string]bool{"taken@example.com": true},
		usernames: map[string]bool{"taken_name": true},
	}

	tests := []struct {
		name        string
		modify      func(*models.RegisterRequest)
		wantField   string
		wantMessage string
	}{
		{
			name:   "valid registration",
			modify: func(r *models.RegisterRequest) {},
		},
		{
			name:        "missing email",
			modify:      func(r *models.RegisterRequest) { r.Email = "" },
			wantField:   "email",
			wantMessage: "This field is required.",
		},
		{
			name:        "malformed email",
			modify:      func(r *models.RegisterRequest) { r.Email = "not-an-email" },
			wantField:   "email",
			wantMessage: "Enter a valid email address.",
		},
		{
			name:        "email already used",
			modify:      func(r *models.RegisterRequest) { r.Email = "taken@EXAMPLE.com" },
			wantField:   "email",
			wantMessage: "user with this email already exists.",
		},
		{
			name:        "username too short",
			modify:      func(r *models.RegisterRequest) { r.Username = "abcd" },
			wantField:   "username",
			wantMessage: "Ensure this field has at least 5 characters.",
		},
		{
			name:        "username with invalid characters",
			modify:      func(r *models.RegisterRequest) { r.Username = "ada lovelace" },
			wantField:   "username",
			wantMessage: "Username should only contain alphabets, numbers, underscores, or periods.",
		},
		{
			name:   "username with non ascii letters",
			modify: func(r *models.RegisterRequest) { r.Username = "josé.dev" },
		},
		{
			name:        "username with symbols",
			modify:      func(r *models.RegisterRequest) { r.Username = "ada-lovelace!" },
			wantField:   "username",
			wantMessage: "Username should only contain alphabets, numbers, underscores, or periods.",
		},
		{
			name:        "username already used",
			modify:      func(r *models.RegisterRequest) { r.Username = "taken_name" },
			wantField:   "username",
			wantMessage: "user with this username already exists.",
		},
		{
			name:        "first name too short",
			modify:      func(r *models.RegisterRequest) { r.FirstName = "A" },
			wantField:   "first_name",
			wantMessage: "Ensure this field has at least 2 characters.",
		},
		{
			name:        "last name missing",
			modify:      func(r *models.RegisterRequest) { r.LastName = "  " },
			wantField:   "last_name",
			wantMessage: "This field may not be blank.",
		},
		{
			name:        "bio too long",
			modify:      func(r *models.RegisterRequest) { r.Bio = strings.Repeat("b", 501) },
			wantField:   "bio",
			wantMessage: "Ensure this field has no more than 500 characters.",
		},
		{
			name:        "password too short",
			modify:      func(r *models.RegisterRequest) { r.Password = "Ab1!"; r.ConfirmPassword = "Ab1!" },
			wantField:   "password",
			wantMessage: "Ensure this field has at least 6 characters.",
		},
		{
			name:        "confirm password missing",
			modify:      func(r *models.RegisterRequest) { r.ConfirmPassword = "" },
			wantField:   "confirm_password",
			wantMessage: "This field is required.",
		},
		{
			name:      "password without symbol",
			modify:    func(r *models.RegisterRequest) { r.Password = "Abcdef1"; r.ConfirmPassword = "Abcdef1" },
			wantField: "password",
		},
		{
			name:        "passwords differ",
			modify:      func(r *models.RegisterRequest) { r.ConfirmPassword = "Abcdef1@" },
			wantField:   "confirm_password",
			wantMessage: "Passwords do not match.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegistration()
			tt.modify(&req)

			problems, err := ValidateRegistration(context.Background(), req, taken)
			if err != nil {
				t.Fatalf("unexpected lookup error: %v", err)
			}

			if tt.wantField == "" {
				if len(problems) != 0 {
					t.Fatalf("expected no errors, got %v", problems)
				}
				return
			}
			if len(problems) == 0 {
				t.Fatalf("expected an error on %s, got none", tt.wantField)
			}
			if problems[0].Field != tt.wantField {
				t.Errorf("expected first error on %s, got %s", tt.wantField, problems[0].Field)
			}
			if tt.wantMessage != "" && problems[0].Message != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, problems[0].Message)
			}
		})
	}
}

func TestValidateRegistrationFieldErrorsBeforePasswordMatch(t *testing.T) {
	req := validRegistration()
	req.FirstName = ""
	req.ConfirmPassword = "Different1!"

	problems, err := ValidateRegistration(context.Background(), req, fakeChecker{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if problems.Has("confirm_password") {
		t.Errorf("password match should not be checked while field errors exist: %v", problems)
	}
	if !problems.Has("first_name") {
		t.Errorf("expected first_name error, got %v", problems)
	}
}

func TestValidateRegistrationLookupError(t *testing.T) {
	lookupErr := errors.New("connection reset")
	_, err := ValidateRegistration(context.Background(), validRegistration(), fakeChecker{err: lookupErr})
	if !errors.Is(err, lookupErr) {
		t.Fatalf("expected lookup error, got %v", err)
	}
}

func TestPasswordIsComplex(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"abcdef", false},
		{"Abcdef1!", true},
		{"ABCDEF1!", false},
		{"abcdef1!", false},
		{"Abcdefg!", false},
		{"Abcdef12", false},
		{"Ab1!x", true},
		{"Ab1!", false},
		{"Abcdef1!" + strings.Repeat("x", 28), false},
		{"Abcdef1! ", false},
		{"Abcdéf1!", false},
	}

	for _, tt := range tests {
		if got := PasswordIsComplex(tt.password); got != tt.want {
			t.Errorf("PasswordIsComplex(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}
}

func TestErrorsErr(t *testing.T) {
	var v Errors
	if v.Err() != nil {
		t.Fatal("empty Errors should not produce an error")
	}

	v.Add("title", "This field may not be blank.")
	v.Add("content", "This field is required.")

	err := v.Err()
	if !errs.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var apiErr *errs.ApiErr
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *errs.ApiErr, got %T", err)
	}
	if apiErr.Field != "title" || apiErr.Message() != "This field may not be blank." {
		t.Errorf("expected the first error to be surfaced, got %s: %s", apiErr.Field, apiErr.Message())
	}
}

func TestValidateLogin(t *testing.T) {
	if len(ValidateLogin(models.LoginRequest{Email: "a@b.co", Password: "x"})) != 0 {
		t.Error("expected complete credentials to pass")
	}
	if !ValidateLogin(models.LoginRequest{Email: "a@b.co"}).Has("non_field_errors") {
		t.Error("expected missing password to fail")
	}
	if !ValidateLogin(models.LoginRequest{Password: "x"}).Has("non_field_errors") {
		t.Error("expected missing email to fail")
	}
}

func ptr(s string) *string { return &s }

func TestValidateBlogPost(t *testing.T) {
	tests := []struct {
		name      string
		req       models.BlogPostRequest
		partial   bool
		wantField string
	}{
		{name: "full create", req: models.BlogPostRequest{Title: ptr("Hello"), Content: ptr("Body")}},
		{name: "missing title on create", req: models.BlogPostRequest{Content: ptr("Body")}, wantField: "title"},
		{name: "missing content on create", req: models.BlogPostRequest{Title: ptr("Hello")}, wantField: "content"},
		{name: "blank content", req: models.BlogPostRequest{Title: ptr("Hello"), Content: ptr("   ")}, wantField: "content"},
		{name: "title too long", req: models.BlogPostRequest{Title: ptr(strings.Repeat("t", 256)), Content: ptr("Body")}, wantField: "title"},
		{name: "partial with content only", req: models.BlogPostRequest{Content: ptr("Body")}, partial: true},
		{name: "partial with nothing", req: models.BlogPostRequest{}, partial: true},
		{name: "partial with blank title", req: models.BlogPostRequest{Title: ptr("")}, partial: true, wantField: "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValidateBlogPost(tt.req, tt.partial)
			if tt.wantField == "" {
				if len(v) != 0 {
					t.Fatalf("expected no errors, got %v", v)
				}
				return
			}
			if !v.Has(tt.wantField) {
				t.Fatalf("expected error on %s, got %v", tt.wantField, v)
			}
		})
	}
}

func TestValidateComment(t *testing.T) {
	if len(ValidateComment(models.CommentRequest{Content: ptr("Nice post")}, false)) != 0 {
		t.Error("expected valid comment to pass")
	}
	if !ValidateComment(models.CommentRequest{}, false).Has("content") {
		t.Error("expected missing content to fail on create")
	}
	if len(ValidateComment(models.CommentRequest{}, true)) != 0 {
		t.Error("expected partial update without content to pass")
	}
	if !ValidateComment(models.CommentRequest{Content: ptr(strings.Repeat("c", 501))}, false).Has("content") {
		t.Error("expected content over 500 characters to fail")
	}
}

func TestValidateProfileUpdate(t *testing.T) {
	if !ValidateProfileUpdate(models.ProfileUpdateRequest{Bio: ptr("hi")}, false).Has("first_name") {
		t.Error("expected full update to require first_name")
	}
	if len(ValidateProfileUpdate(models.ProfileUpdateRequest{Bio: ptr("hi")}, true)) != 0 {
		t.Error("expected partial update with bio only to pass")
	}
	if !ValidateProfileUpdate(models.ProfileUpdateRequest{LastName: ptr("L")}, true).Has("last_name") {
		t.Error("expected one character last name to fail")
	}
}

func TestValidateTag(t *testing.T) {
	if len(ValidateTag(models.TagRequest{Name: "golang"})) != 0 {
		t.Error("expected valid tag to pass")
	}
	if !ValidateTag(models.TagRequest{Name: ""}).Has("name") {
		t.Error("expected empty name to fail")
	}
	if !ValidateTag(models.TagRequest{Name: strings.Repeat("n", 101)}).Has("name") {
		t.Error("expected name over 100 characters to fail")
	}
}
