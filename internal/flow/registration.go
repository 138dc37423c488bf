package flow

import (
	"context"
	"net/url"
	"sync"

	"woodeoo-auth/internal/routes"
	"woodeoo-auth/internal/validation"

	"go.uber.org/zap"
)

type AccountType string

const (
	AccountUnset   AccountType = ""
	AccountClient  AccountType = "client"
	AccountArtisan AccountType = "artisan"
)

type RegistrationStep string

const (
	StepSelectType  RegistrationStep = "select_type"
	StepClientForm  RegistrationStep = "client_form"
	StepArtisanForm RegistrationStep = "artisan_form"
)

// Field names an editable registration input.
type Field string

const (
	FieldUsername        Field = "username"
	FieldEmail           Field = "email"
	FieldPhone           Field = "phone"
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirm_password"
	FieldCompanyName     Field = "company_name"
	FieldTaxID           Field = "tax_id"
)

type RegistrationForm struct {
	Username        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
	CompanyName     string
	TaxID           string
}

// RegistrationState is a snapshot for rendering.
type RegistrationState struct {
	Step          RegistrationStep
	AccountType   AccountType
	Form          RegistrationForm
	Criteria      validation.PasswordCriteria
	ShowPasswords bool
	// ShowBusinessFields is true on the artisan form (company name, tax id).
	ShowBusinessFields bool
	Error              string
	Submitting         bool
	Completed          bool
}

// Registration is the two-step sign-up page: pick an account type, then fill
// the form for that type.
type Registration struct {
	mu      sync.Mutex
	gateway Gateway
	nav     Navigator
	opts    Options
	life    *lifecycle

	accountType   AccountType
	form          RegistrationForm
	criteria      validation.PasswordCriteria
	showPasswords bool
	err           string
	submitting    bool
	completed     bool
}

func NewRegistration(gateway Gateway, nav Navigator, opts Options) *Registration {
	return &Registration{
		gateway: gateway,
		nav:     nav,
		opts:    opts.withDefaults(),
		life:    newLifecycle(),
	}
}

// SelectType clears every draft field and shows the form for t.
func (r *Registration) SelectType(t AccountType) error {
	if t != AccountClient && t != AccountArtisan {
		return ErrUnknownAccountType
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.submitting {
		return ErrBusy
	}
	r.accountType = t
	r.resetLocked()
	return nil
}

// Back returns to the account type choice, discarding the draft.
func (r *Registration) Back() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.submitting {
		return
	}
	r.accountType = AccountUnset
	r.resetLocked()
}

func (r *Registration) Set(field Field, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.accountType == AccountUnset {
		return ErrNoAccountType
	}

	switch field {
	case FieldUsername:
		r.form.Username = value
	case FieldEmail:
		r.form.Email = value
	case FieldPhone:
		r.form.Phone = value
	case FieldPassword:
		r.form.Password = value
		r.criteria = validation.EvaluatePassword(value)
	case FieldConfirmPassword:
		r.form.ConfirmPassword = value
	case FieldCompanyName, FieldTaxID:
		if r.accountType != AccountArtisan {
			return ErrFieldUnavailable
		}
		if field == FieldCompanyName {
			r.form.CompanyName = value
		} else {
			r.form.TaxID = value
		}
	default:
		return ErrFieldUnavailable
	}

	r.err = ""
	return nil
}

// TogglePasswordVisibility flips the single show/hide switch of both password inputs.
func (r *Registration) TogglePasswordVisibility() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.showPasswords = !r.showPasswords
}

// Submit validates the draft and registers the account. Checks run in order
// (required fields, password policy, confirmation) and stop at the first
// failure, which becomes the page error.
func (r *Registration) Submit(ctx context.Context) error {
	r.mu.Lock()
	if r.life.closed() {
		r.mu.Unlock()
		return ErrClosed
	}
	if r.accountType == AccountUnset {
		r.mu.Unlock()
		return ErrNoAccountType
	}
	if r.submitting {
		r.mu.Unlock()
		return ErrBusy
	}

	f := r.form
	if err := checkPasswordForm(f.Email == "" || f.Phone == "", f.Password, f.ConfirmPassword); err != nil {
		r.err = err.Error()
		r.mu.Unlock()
		return err
	}

	in := RegisterInput{
		Username:    f.Username,
		Email:       f.Email,
		Phone:       f.Phone,
		Password:    f.Password,
		AccountType: string(r.accountType),
	}
	if r.accountType == AccountArtisan {
		in.CompanyName = f.CompanyName
		in.TaxID = f.TaxID
	}
	r.err = ""
	r.submitting = true
	r.mu.Unlock()

	callCtx, cancel := r.life.join(ctx)
	err := r.gateway.Register(callCtx, in)
	cancel()

	r.mu.Lock()
	r.submitting = false
	if r.life.closed() {
		r.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		r.err = describe(r.opts.Logger, "register", err, MsgRequestRejected)
		r.mu.Unlock()
		return err
	}
	r.completed = true
	target := r.opts.Routes.URL(routes.Login, url.Values{routes.ParamRegistered: {"1"}})
	r.mu.Unlock()

	r.opts.Logger.Info("registration succeeded", zap.String("account_type", in.AccountType))
	r.nav.Navigate(target)
	return nil
}

func (r *Registration) State() RegistrationState {
	r.mu.Lock()
	defer r.mu.Unlock()

	step := StepSelectType
	switch r.accountType {
	case AccountClient:
		step = StepClientForm
	case AccountArtisan:
		step = StepArtisanForm
	}

	return RegistrationState{
		Step:               step,
		AccountType:        r.accountType,
		Form:               r.form,
		Criteria:           r.criteria,
		ShowPasswords:      r.showPasswords,
		ShowBusinessFields: r.accountType == AccountArtisan,
		Error:              r.err,
		Submitting:         r.submitting,
		Completed:          r.completed,
	}
}

// Close cancels an in-flight registration request.
func (r *Registration) Close() {
	r.life.close()
}

func (r *Registration) resetLocked() {
	r.form = RegistrationForm{}
	r.criteria = validation.PasswordCriteria{}
	r.err = ""
	r.completed = false
}

// checkPasswordForm applies the shared guard order of the registration and
// reset pages.
func checkPasswordForm(missing bool, password, confirm string) error {
	if missing || password == "" || confirm == "" {
		return ErrMissingFields
	}
	if !validation.EvaluatePassword(password).IsValid() {
		return ErrWeakPassword
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}
