package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"woodeoo-auth/internal/flow"
	"woodeoo-auth/internal/routes"
	"woodeoo-auth/internal/validation"
)

// landing stands in for pages outside the auth flows (home, dashboard).
type landing struct {
	name routes.Name
}

// shell is a line-oriented front end for the page flows. It is the flows'
// Navigator: every navigation replaces the current page.
type shell struct {
	out     io.Writer
	gateway flow.Gateway
	opts    flow.Options

	mu      sync.Mutex
	gen     int
	page    any
	session *flow.Session
}

func newShell(out io.Writer, gateway flow.Gateway, opts flow.Options) *shell {
	return &shell{out: out, gateway: gateway, opts: opts}
}

func (s *shell) Navigate(target string) {
	if err := s.open(target); err != nil {
		s.printf("cannot open %s: %v\n", target, err)
	}
}

// open builds the page for target. A page that navigates away while being
// built is discarded in favour of the newer one.
func (s *shell) open(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return err
	}
	name, ok := s.lookup(u.Path)
	if !ok {
		return fmt.Errorf("unknown page %q", u.Path)
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	q := u.Query()
	var p any
	switch name {
	case routes.Register:
		p = flow.NewRegistration(s.gateway, s, s.opts)
	case routes.Signup:
		p = flow.NewSignup(s.gateway, s, s.opts)
	case routes.Login:
		p = flow.NewLogin(q, s.gateway, s, s.opts)
	case routes.ForgotPassword:
		p = flow.NewForgot(s.gateway, s, s.opts)
	case routes.VerifyCode:
		p = flow.NewVerification(q, s.gateway, s, s.opts, func(remaining int) {
			if remaining == 0 {
				s.printf("You can request a new code.\n")
			}
		})
	case routes.ResetPassword:
		p = flow.NewReset(q, s.gateway, s, s.opts)
	default:
		p = landing{name: name}
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		closePage(p)
		return nil
	}
	old := s.page
	s.page = p
	s.mu.Unlock()

	if login, ok := old.(*flow.Login); ok {
		if session := login.Session(); session != nil {
			s.mu.Lock()
			s.session = session
			s.mu.Unlock()
		}
	}

	closePage(old)
	s.printf("-> %s\n", target)
	s.render()
	return nil
}

func (s *shell) lookup(path string) (routes.Name, bool) {
	for _, name := range routes.Names() {
		if s.opts.Routes.Path(name) == path {
			return name, true
		}
	}
	name, ok := s.opts.Routes.Legacy()[path]
	return name, ok
}

func (s *shell) current() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Run reads commands until EOF or "quit".
func (s *shell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	s.printf("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			break
		}
		if line != "" {
			if err := s.exec(ctx, line); err != nil {
				s.printf("error: %v\n", err)
			}
		}
		if ctx.Err() != nil {
			break
		}
		s.printf("> ")
	}
	closePage(s.current())
	return scanner.Err()
}

func (s *shell) exec(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "help":
		s.printf("%s", helpText)
		return nil
	case "open":
		return s.open(arg)
	case "state":
		s.render()
		return nil
	}

	before := s.current()

	var err error
	switch p := before.(type) {
	case *flow.Registration:
		err = s.execRegistration(ctx, p, cmd, arg)
	case *flow.Signup:
		err = execCredentials(ctx, p, cmd, arg)
	case *flow.Login:
		err = execCredentials(ctx, p, cmd, arg)
	case *flow.Forgot:
		err = s.execForgot(ctx, p, cmd, arg)
	case *flow.Verification:
		err = s.execVerification(ctx, p, cmd, arg)
	case *flow.Reset:
		err = s.execReset(ctx, p, cmd, arg)
	case nil:
		err = fmt.Errorf("no page open, try: open %s", s.opts.Routes.Path(routes.Login))
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}

	// a page that navigated away has already rendered its successor
	if s.current() == before {
		s.render()
	}
	return err
}

func (s *shell) execRegistration(ctx context.Context, p *flow.Registration, cmd, arg string) error {
	switch cmd {
	case "type":
		return p.SelectType(flow.AccountType(arg))
	case "back":
		p.Back()
		return nil
	case "set":
		field, value, _ := strings.Cut(arg, " ")
		return p.Set(flow.Field(field), value)
	case "toggle":
		p.TogglePasswordVisibility()
		return nil
	case "submit":
		return p.Submit(ctx)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

// credentialsPage is implemented by the signup and login pages.
type credentialsPage interface {
	SetEmail(string)
	SetPassword(string)
	TogglePasswordVisibility()
	Submit(context.Context) error
}

func execCredentials(ctx context.Context, p credentialsPage, cmd, arg string) error {
	switch cmd {
	case "set":
		field, value, _ := strings.Cut(arg, " ")
		switch field {
		case "email":
			p.SetEmail(value)
		case "password":
			p.SetPassword(value)
		default:
			return fmt.Errorf("unknown field %q", field)
		}
		return nil
	case "toggle":
		p.TogglePasswordVisibility()
		return nil
	case "submit":
		return p.Submit(ctx)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (s *shell) execForgot(ctx context.Context, p *flow.Forgot, cmd, arg string) error {
	switch cmd {
	case "set":
		_, value, _ := strings.Cut(arg, " ")
		p.SetContact(value)
		return nil
	case "submit":
		return p.Submit(ctx)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (s *shell) execVerification(ctx context.Context, p *flow.Verification, cmd, arg string) error {
	switch cmd {
	case "code":
		p.Input(arg)
		return nil
	case "backspace":
		p.Backspace()
		return nil
	case "resend":
		sent, err := p.Resend(ctx)
		if err == nil && !sent {
			return fmt.Errorf("wait %d seconds before requesting a new code", p.State().Cooldown)
		}
		return err
	case "submit":
		return p.Submit(ctx)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (s *shell) execReset(ctx context.Context, p *flow.Reset, cmd, arg string) error {
	switch cmd {
	case "set":
		field, value, _ := strings.Cut(arg, " ")
		switch field {
		case "password":
			p.SetPassword(value)
		case "confirm", "confirm_password":
			p.SetConfirmPassword(value)
		default:
			return fmt.Errorf("unknown field %q", field)
		}
		return nil
	case "toggle":
		p.TogglePasswordVisibility()
		return nil
	case "submit":
		return p.Submit(ctx)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (s *shell) render() {
	s.mu.Lock()
	page, session := s.page, s.session
	s.mu.Unlock()

	switch p := page.(type) {
	case *flow.Registration:
		st := p.State()
		s.printf("[register] step=%s type=%s\n", st.Step, st.AccountType)
		if st.Step != flow.StepSelectType {
			s.printf("  email=%q phone=%q username=%q\n", st.Form.Email, st.Form.Phone, st.Form.Username)
			if st.ShowBusinessFields {
				s.printf("  company_name=%q tax_id=%q\n", st.Form.CompanyName, st.Form.TaxID)
			}
			s.printf("  password=%s  %s\n", mask(st.Form.Password, st.ShowPasswords), criteria(st.Criteria))
		}
		s.printError(st.Error)
	case *flow.Signup:
		st := p.State()
		s.printf("[signup] email=%q password=%s  %s\n", st.Email, mask(st.Password, st.ShowPassword), criteria(st.Criteria))
		s.printError(st.Error)
	case *flow.Login:
		st := p.State()
		if st.Notice != "" {
			s.printf("  %s\n", st.Notice)
		}
		s.printf("[login] email=%q password=%s\n", st.Email, mask(st.Password, st.ShowPassword))
		s.printError(st.Error)
	case *flow.Forgot:
		st := p.State()
		s.printf("[forgot-password] contact=%q (%s)\n", st.Contact, st.Kind)
		s.printError(st.Error)
	case *flow.Verification:
		st := p.State()
		s.printf("[verify-code] contact=%q code=%q status=%s\n", st.Contact, st.Code, st.Status)
		if !st.CanResend {
			s.printf("  resend available in %ds\n", st.Cooldown)
		}
		s.printError(st.Error)
	case *flow.Reset:
		st := p.State()
		if st.Success != "" {
			s.printf("  %s\n", st.Success)
		}
		if st.ShowForm && !st.Done {
			s.printf("[reset-password] contact=%q password=%s  %s\n", st.Contact, mask(st.Password, st.ShowPasswords), criteria(st.Criteria))
		}
		s.printError(st.Error)
	case landing:
		if session != nil {
			s.printf("[%s] signed in as %s\n", p.name, session.UserID)
		} else {
			s.printf("[%s]\n", p.name)
		}
	}
}

func (s *shell) printError(msg string) {
	if msg != "" {
		s.printf("  ! %s\n", msg)
	}
}

func (s *shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func closePage(p any) {
	if c, ok := p.(interface{ Close() }); ok {
		c.Close()
	}
}

func mask(value string, show bool) string {
	if show {
		return fmt.Sprintf("%q", value)
	}
	return strings.Repeat("*", len(value))
}

// criteria summarises the password checklist: "ok" or the unmet rules.
func criteria(c validation.PasswordCriteria) string {
	unmet := c.Unmet()
	if len(unmet) == 0 {
		return "(password ok)"
	}
	labels := make([]string, len(unmet))
	for i, rule := range unmet {
		labels[i] = rule.Label()
	}
	return "(missing: " + strings.Join(labels, ", ") + ")"
}

const helpText = `commands:
  open <path>            open a page, e.g. open /auth/register
  state                  show the current page
  type client|artisan    registration: choose the account type
  back                   registration: back to the type choice
  set <field> <value>    fill a field (email, password, phone, contact, confirm ...)
  toggle                 show or hide passwords
  code <digits>          verification: type the code
  backspace              verification: delete the last digit
  resend                 verification: send a new code
  submit                 submit the current page
  quit
`
