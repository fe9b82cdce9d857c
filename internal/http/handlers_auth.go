package http

import (
	"net/http"

	"finman/internal/core"
)

type authPageData struct {
	Error    string
	Username string
	Email    string
	Notice   string
	Policy   core.PasswordPolicy
}

func (s *Server) handleSignInPage(w http.ResponseWriter, r *http.Request) {
	if s.session.IsAuthenticated() {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	data := authPageData{}
	if r.URL.Query().Get("registered") == "1" {
		data.Notice = "Account created. Please sign in."
	}
	s.render(w, r, "signin.html", data)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	username := sanitizeInput(r.Form.Get("username"))
	password := r.Form.Get("password")

	if err := s.auth.SignIn(r.Context(), username, password); err != nil {
		s.render(w, r, "signin_form.html", authPageData{
			Error:    s.auth.ErrorMessage(),
			Username: username,
		})
		return
	}

	NewHTMXResponse().Redirect("/dashboard").Write(w)
}

func (s *Server) handleSignUpPage(w http.ResponseWriter, r *http.Request) {
	if s.session.IsAuthenticated() {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, r, "signup.html", authPageData{})
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	username := sanitizeInput(r.Form.Get("username"))
	email := sanitizeInput(r.Form.Get("email"))
	password := r.Form.Get("password")

	if err := s.auth.SignUp(r.Context(), username, email, password); err != nil {
		s.render(w, r, "signup_form.html", authPageData{
			Error:    s.auth.ErrorMessage(),
			Username: username,
			Email:    email,
			Policy:   core.CheckPassword(password),
		})
		return
	}

	NewHTMXResponse().Redirect("/signin?registered=1").Write(w)
}

// handleLogout clears the session. The confirmation dialog happens on
// the client; by the time this runs the user already said yes.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.SignOut(r.Context()); err != nil {
		InternalServerError("Could not sign out. Please try again.").Write(w)
		return
	}
	if isHTMX(r) {
		NewHTMXResponse().Redirect("/signin").Write(w)
		return
	}
	http.Redirect(w, r, "/signin", http.StatusSeeOther)
}
