package handler

import (
	"net/http"
	"time"

	"github.com/prodyhq/prody/internal/context"
	"github.com/prodyhq/prody/internal/errHandler"
	"github.com/prodyhq/prody/internal/helper"
	"github.com/prodyhq/prody/internal/models"
	"github.com/prodyhq/prody/internal/request"
	"github.com/prodyhq/prody/internal/response"
	"github.com/prodyhq/prody/internal/token"
	"github.com/prodyhq/prody/internal/validator"

	"github.com/cradoe/gopass"
)

// Signing up only reserves the account: the user stays unverified until
// they present the OTP we mail them. The user row and its audit entry
// are written in one transaction; the OTP and the email are side effects
// that must not fail the signup.
func (h *RouteHandler) HandleAuthSignup(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Password  string              `json:"password"`
		FirstName string              `json:"first_name"`
		LastName  *string             `json:"last_name"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	// we need to validate the password to make sure it meets the minimum requirements
	_, errs := gopass.Validate(input.Password)
	if errs != nil {
		h.ErrHandler.FailedValidation(w, r, errs)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")

	input.Validator.Check(validator.NotBlank(input.FirstName), "First name is required")
	input.Validator.Check(validator.MinRunes(input.FirstName, 2), "First name is too short")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	// we want to make sure no two users have the same email
	_, found, err := h.DB.User().GetByEmail(input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if found {
		h.ErrHandler.Conflict(w, r, "Email is already in use")
		return
	}

	hashedPassword, err := gopass.Hash(input.Password)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	tx, err := h.DB.BeginTx(r.Context(), nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	defer func() {
		// always make sure it rollback, if there is an error
		// ...and the transaction is not committed
		if err != nil {
			tx.Rollback()
		}
	}()

	createdUser := &models.User{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		FullName:       models.FullNameOf(input.FirstName, input.LastName),
		Email:          input.Email,
		HashedPassword: hashedPassword,
	}

	userID, err := h.DB.User().Insert(createdUser, tx)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	_, err = h.Activity.Record(&models.ActivityLog{
		UserID:   userID,
		Action:   models.ActivityLogSignupInitiatedAction,
		Entity:   models.ActivityLogAuthEntity,
		EntityID: &userID,
	}, tx)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if err = tx.Commit(); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		otp, err := helper.GenerateOTP()
		if err != nil {
			return err
		}

		if err := h.Cache.SetVerificationOTP(createdUser.Email, otp); err != nil {
			return err
		}

		emailData := h.Helper.NewEmailData()
		emailData["Name"] = createdUser.FirstName
		emailData["OTP"] = otp

		return h.Mailer.Send(createdUser.Email, emailData, "otp.tmpl")
	})

	message := "Account created. Check your email for a verification code."

	err = response.JSONCreatedResponse(w, nil, message)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// Resending replaces whatever code is currently outstanding. Unlike
// signup, a mail failure here is the whole point of the request, so it
// surfaces as a server error.
func (h *RouteHandler) HandleAuthResendOTP(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	user, found, err := h.DB.User().GetByEmail(input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFound(w, r, "No account found for that email")
		return
	}

	if user.IsVerified() {
		h.ErrHandler.BadRequest(w, r, errHandler.ErrAlreadyVerified)
		return
	}

	otp, err := helper.GenerateOTP()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if err := h.Cache.SetVerificationOTP(user.Email, otp); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	emailData := h.Helper.NewEmailData()
	emailData["Name"] = user.FirstName
	emailData["OTP"] = otp

	if err := h.Mailer.Send(user.Email, emailData, "otp.tmpl"); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, nil, "Verification code sent", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// A wrong code and an expired code are deliberately indistinguishable to
// the caller.
func (h *RouteHandler) HandleAuthVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		OTP       string              `json:"otp"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.NotBlank(input.OTP), "OTP is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	user, found, err := h.DB.User().GetByEmail(input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFound(w, r, "No account found for that email")
		return
	}

	storedOTP, found, err := h.Cache.GetVerificationOTP(input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found || storedOTP != input.OTP {
		h.ErrHandler.BadRequest(w, r, errHandler.ErrInvalidOTP)
		return
	}

	if err := h.DB.User().Verify(user.ID); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	// Codes are single-use even within their TTL.
	if err := h.Cache.DeleteVerificationOTP(input.Email); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.Activity.Record(&models.ActivityLog{
			UserID:   user.ID,
			Action:   models.ActivityLogEmailVerifiedAction,
			Entity:   models.ActivityLogAuthEntity,
			EntityID: &user.ID,
		}, nil)
		return err
	})

	h.Helper.BackgroundTask(r, func() error {
		emailData := h.Helper.NewEmailData()
		emailData["Name"] = user.FirstName

		return h.Mailer.Send(user.Email, emailData, "welcome.tmpl")
	})

	pair, err := h.Tokens.NewPair(user)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"user":   user.Summary(),
		"tokens": pair,
	}

	err = response.JSONOkResponse(w, data, "Email verified successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleAuthSignin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Password  string              `json:"password"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.NotBlank(input.Password), "Password is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	user, found, err := h.DB.User().GetByEmail(input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.Unauthorized(w, r, "Invalid credentials", "")
		return
	}

	// Google-provisioned accounts have no password hash; there is nothing
	// to compare against, so short-circuit with a message that tells the
	// user which door to use.
	if user.HashedPassword == "" {
		h.ErrHandler.Unauthorized(w, r, "This account uses Google sign-in. Please continue with Google.", errHandler.ErrMsgGoogleAccount)
		return
	}

	passwordMatches, err := gopass.ComparePasswordAndHash(input.Password, user.HashedPassword)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !passwordMatches {
		h.ErrHandler.Unauthorized(w, r, "Invalid credentials", "")
		return
	}

	if !user.IsVerified() {
		h.ErrHandler.Unauthorized(w, r, "Please verify your email before signing in", errHandler.ErrMsgEmailVerificationRequired)
		return
	}

	pair, err := h.Tokens.NewPair(user)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.Activity.Record(&models.ActivityLog{
			UserID:   user.ID,
			Action:   models.ActivityLogLoginAction,
			Entity:   models.ActivityLogAuthEntity,
			EntityID: &user.ID,
		}, nil)
		return err
	})

	data := map[string]any{
		"user":   user.Summary(),
		"tokens": pair,
	}

	err = response.JSONOkResponse(w, data, "Signed in successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// The response is the same whether or not the account exists, so the
// endpoint can't be used to probe registered emails.
func (h *RouteHandler) HandleAuthForgotPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	user, found, err := h.DB.User().GetByEmail(input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if found {
		resetToken, err := helper.GenerateSecureToken(32)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		if err := h.Cache.SetPasswordResetToken(resetToken, user.ID); err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		h.Helper.BackgroundTask(r, func() error {
			_, err := h.Activity.Record(&models.ActivityLog{
				UserID:   user.ID,
				Action:   models.ActivityLogPasswordResetRequestAction,
				Entity:   models.ActivityLogAuthEntity,
				EntityID: &user.ID,
			}, nil)
			return err
		})

		h.Helper.BackgroundTask(r, func() error {
			emailData := h.Helper.NewEmailData()
			emailData["Name"] = user.FirstName
			emailData["ResetURL"] = h.Config.FrontendURL + "/reset-password?token=" + resetToken

			return h.Mailer.Send(user.Email, emailData, "password-reset.tmpl")
		})
	}

	message := "If that email is registered, a reset link has been sent"

	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleAuthResetPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token     string              `json:"token"`
		Password  string              `json:"password"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	_, errs := gopass.Validate(input.Password)
	if errs != nil {
		h.ErrHandler.FailedValidation(w, r, errs)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Token), "Token is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	// Consuming deletes the token; a second attempt with the same link
	// fails exactly like an expired one.
	userID, found, err := h.Cache.ConsumePasswordResetToken(input.Token)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.BadRequest(w, r, errHandler.ErrInvalidResetToken)
		return
	}

	hashedPassword, err := gopass.Hash(input.Password)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if err := h.DB.User().UpdatePassword(userID, hashedPassword); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.Activity.Record(&models.ActivityLog{
			UserID:   userID,
			Action:   models.ActivityLogPasswordChangedAction,
			Entity:   models.ActivityLogAuthEntity,
			EntityID: &userID,
		}, nil)
		return err
	})

	err = response.JSONOkResponse(w, nil, "Password has been reset", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// Google sign-in provisions the account on first use and refreshes the
// profile on every subsequent one. These accounts are verified from the
// start and never get a password hash.
func (h *RouteHandler) HandleAuthGoogle(w http.ResponseWriter, r *http.Request) {
	var input struct {
		IDToken   string              `json:"id_token"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.IDToken), "ID token is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	identity, err := h.Google.Verify(r.Context(), input.IDToken)
	if err != nil {
		h.ErrHandler.Unauthorized(w, r, "Google sign-in could not be verified", "")
		return
	}

	incoming := &models.User{
		FirstName: identity.GivenName,
		Email:     identity.Email,
	}
	if identity.FamilyName != "" {
		incoming.LastName = &identity.FamilyName
	}
	if incoming.FirstName == "" {
		incoming.FirstName = identity.Email
	}
	incoming.FullName = models.FullNameOf(incoming.FirstName, incoming.LastName)
	if identity.Picture != "" {
		incoming.AvatarURL = &identity.Picture
	}

	_, existed, err := h.DB.User().GetByEmail(identity.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	user, err := h.DB.User().UpsertGoogleUser(incoming)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !existed {
		h.Helper.BackgroundTask(r, func() error {
			emailData := h.Helper.NewEmailData()
			emailData["Name"] = user.FirstName

			return h.Mailer.Send(user.Email, emailData, "welcome.tmpl")
		})
	}

	pair, err := h.Tokens.NewPair(user)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.Activity.Record(&models.ActivityLog{
			UserID:   user.ID,
			Action:   models.ActivityLogLoginAction,
			Entity:   models.ActivityLogAuthEntity,
			EntityID: &user.ID,
		}, nil)
		return err
	})

	data := map[string]any{
		"user":   user.Summary(),
		"tokens": pair,
	}

	err = response.JSONOkResponse(w, data, "Signed in with Google", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// Refresh declines when the presented access token still has more than
// five minutes of validity, so clients can't churn out token pairs.
func (h *RouteHandler) HandleAuthRefresh(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RefreshToken string              `json:"refresh_token"`
		AccessToken  string              `json:"access_token"`
		Validator    validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.RefreshToken), "Refresh token is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	claims, err := h.Tokens.Verify(input.RefreshToken)
	if err != nil || !claims.IsRefresh {
		h.ErrHandler.InvalidAuthenticationToken(w, r)
		return
	}

	if input.AccessToken != "" {
		// Expired access tokens are fine here, we only read the deadline.
		accessClaims, err := h.Tokens.Peek(input.AccessToken)
		if err != nil {
			h.ErrHandler.InvalidAuthenticationToken(w, r)
			return
		}

		if accessClaims.Remaining(time.Now()) > token.RefreshThreshold {
			h.ErrHandler.BadRequest(w, r, errHandler.ErrNoRefreshNeeded)
			return
		}
	}

	user, found, err := h.DB.User().GetOne(claims.UserID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found || !user.IsVerified() {
		h.ErrHandler.InvalidAuthenticationToken(w, r)
		return
	}

	pair, err := h.Tokens.NewPair(user)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.Activity.Record(&models.ActivityLog{
			UserID:   user.ID,
			Action:   models.ActivityLogTokenRefreshedAction,
			Entity:   models.ActivityLogAuthEntity,
			EntityID: &user.ID,
		}, nil)
		return err
	})

	data := map[string]any{
		"tokens": pair,
	}

	err = response.JSONOkResponse(w, data, "Tokens refreshed", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleAuthMe(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	err := response.JSONOkResponse(w, user.Summary(), "", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
