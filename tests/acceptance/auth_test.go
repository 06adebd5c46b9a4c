package acceptance

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/vidtube/auth-service/internal/dto"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

func (s *Suite) register(username, email, password string) *http.Response {
	body, _ := json.Marshal(dto.RegisterRequest{
		FullName: "Test User",
		Username: username,
		Email:    email,
		Password: password,
	})

	resp, err := http.Post(
		s.BaseURL+"/api/v1/users/register",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	return resp
}

func (s *Suite) login(username, password string) (*dto.AuthResponse, *http.Response) {
	body, _ := json.Marshal(dto.LoginRequest{
		Username: username,
		Password: password,
	})

	resp, err := http.Post(
		s.BaseURL+"/api/v1/users/login",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)

	if resp.StatusCode != http.StatusOK {
		return nil, resp
	}

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))
	return &authResp, resp
}

func cookieValue(resp *http.Response, name string) (string, bool) {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

func (s *Suite) TestRegister_Success() {
	resp := s.register("chai", "chai@example.com", "Password123")
	defer resp.Body.Close()

	s.Equal(http.StatusCreated, resp.StatusCode)

	var user dto.UserResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&user))

	s.NotEmpty(user.ID)
	s.Equal("chai", user.Username)
	s.Equal("chai@example.com", user.Email)

	// registration does not start a session
	s.Empty(resp.Cookies())
}

func (s *Suite) TestRegister_DuplicateUsername() {
	resp1 := s.register("duplicate", "first@example.com", "Password123")
	resp1.Body.Close()
	s.Equal(http.StatusCreated, resp1.StatusCode)

	resp2 := s.register("duplicate", "second@example.com", "Password123")
	defer resp2.Body.Close()

	s.Equal(http.StatusConflict, resp2.StatusCode)

	var errResp dto.ErrorResponse
	s.Require().NoError(json.NewDecoder(resp2.Body).Decode(&errResp))
	s.Equal("Conflict", errResp.Error)
}

func (s *Suite) TestRegister_InvalidEmail() {
	resp := s.register("chai", "not-an-email", "Password123")
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestRegister_WeakPassword() {
	resp := s.register("chai", "chai@example.com", "alllowercase1")
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogin_Success() {
	resp := s.register("chai", "chai@example.com", "Password123")
	resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	authResp, loginResp := s.login("chai", "Password123")
	defer loginResp.Body.Close()

	s.Equal(http.StatusOK, loginResp.StatusCode)
	s.NotEmpty(authResp.AccessToken)
	s.NotEmpty(authResp.RefreshToken)
	s.Equal("Bearer", authResp.TokenType)
	s.NotZero(authResp.ExpiresIn)
	s.Equal("chai", authResp.User.Username)

	access, ok := cookieValue(loginResp, accessTokenCookie)
	s.Require().True(ok, "access token cookie should be set")
	s.Equal(authResp.AccessToken, access)

	refresh, ok := cookieValue(loginResp, refreshTokenCookie)
	s.Require().True(ok, "refresh token cookie should be set")
	s.Equal(authResp.RefreshToken, refresh)
}

func (s *Suite) TestLogin_ByEmail() {
	resp := s.register("chai", "chai@example.com", "Password123")
	resp.Body.Close()

	body, _ := json.Marshal(dto.LoginRequest{
		Email:    "chai@example.com",
		Password: "Password123",
	})
	loginResp, err := http.Post(s.BaseURL+"/api/v1/users/login", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer loginResp.Body.Close()

	s.Equal(http.StatusOK, loginResp.StatusCode)
}

func (s *Suite) TestLogin_WrongPassword() {
	resp := s.register("chai", "chai@example.com", "Password123")
	resp.Body.Close()

	_, loginResp := s.login("chai", "WrongPassword1")
	defer loginResp.Body.Close()

	s.Equal(http.StatusUnauthorized, loginResp.StatusCode)
	s.Empty(loginResp.Cookies())
}

func (s *Suite) TestLogin_UnknownUser() {
	_, loginResp := s.login("ghost", "Password123")
	defer loginResp.Body.Close()

	s.Equal(http.StatusUnauthorized, loginResp.StatusCode)
}

func (s *Suite) refreshWithCookie(token string) *http.Response {
	req, err := http.NewRequest(http.MethodPost, s.BaseURL+"/api/v1/users/refresh-token", nil)
	s.Require().NoError(err)
	req.AddCookie(&http.Cookie{Name: refreshTokenCookie, Value: token})

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *Suite) TestRefresh_RotatesTokenPair() {
	resp := s.register("chai", "chai@example.com", "Password123")
	resp.Body.Close()

	authResp, loginResp := s.login("chai", "Password123")
	loginResp.Body.Close()

	refreshResp := s.refreshWithCookie(authResp.RefreshToken)
	defer refreshResp.Body.Close()

	s.Equal(http.StatusOK, refreshResp.StatusCode)

	var rotated dto.AuthResponse
	s.Require().NoError(json.NewDecoder(refreshResp.Body).Decode(&rotated))
	s.NotEmpty(rotated.AccessToken)
	s.NotEqual(authResp.RefreshToken, rotated.RefreshToken)

	newCookie, ok := cookieValue(refreshResp, refreshTokenCookie)
	s.Require().True(ok)
	s.Equal(rotated.RefreshToken, newCookie)
}

func (s *Suite) TestRefresh_ReplayedTokenRejected() {
	resp := s.register("chai", "chai@example.com", "Password123")
	resp.Body.Close()

	authResp, loginResp := s.login("chai", "Password123")
	loginResp.Body.Close()

	first := s.refreshWithCookie(authResp.RefreshToken)
	first.Body.Close()
	s.Require().Equal(http.StatusOK, first.StatusCode)

	// the superseded token is still a valid JWT, but it must be dead
	replay := s.refreshWithCookie(authResp.RefreshToken)
	defer replay.Body.Close()

	s.Equal(http.StatusUnauthorized, replay.StatusCode)
}

func (s *Suite) TestRefresh_FromBody() {
	resp := s.register("chai", "chai@example.com", "Password123")
	resp.Body.Close()

	authResp, loginResp := s.login("chai", "Password123")
	loginResp.Body.Close()

	body, _ := json.Marshal(dto.RefreshRequest{RefreshToken: authResp.RefreshToken})
	refreshResp, err := http.Post(s.BaseURL+"/api/v1/users/refresh-token", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer refreshResp.Body.Close()

	s.Equal(http.StatusOK, refreshResp.StatusCode)
}

func (s *Suite) TestRefresh_MissingToken() {
	resp, err := http.Post(s.BaseURL+"/api/v1/users/refresh-token", "application/json", nil)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) authorizedRequest(method, path, accessToken string, body []byte, contentType string) *http.Response {
	var reader *bytes.Buffer
	if body != nil {
		reader = bytes.NewBuffer(body)
	} else {
		reader = &bytes.Buffer{}
	}

	req, err := http.NewRequest(method, s.BaseURL+path, reader)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *Suite) TestLogout_RevokesSession() {
	resp := s.register("chai", "chai@example.com", "Password123")
	resp.Body.Close()

	authResp, loginResp := s.login("chai", "Password123")
	loginResp.Body.Close()

	logoutResp := s.authorizedRequest(http.MethodPost, "/api/v1/users/logout", authResp.AccessToken, nil, "")
	defer logoutResp.Body.Close()

	s.Equal(http.StatusOK, logoutResp.StatusCode)

	for _, c := range logoutResp.Cookies() {
		s.Empty(c.Value, "cookie %s should be cleared", c.Name)
		s.Negative(c.MaxAge)
	}

	// the revoked refresh token must not mint a new pair
	replayResp := s.refreshWithCookie(authResp.RefreshToken)
	defer replayResp.Body.Close()
	s.Equal(http.StatusUnauthorized, replayResp.StatusCode)
}

func (s *Suite) TestGetMe_Success() {
	resp := s.register("chai", "chai@example.com", "Password123")
	resp.Body.Close()

	authResp, loginResp := s.login("chai", "Password123")
	loginResp.Body.Close()

	meResp := s.authorizedRequest(http.MethodGet, "/api/v1/users/me", authResp.AccessToken, nil, "")
	defer meResp.Body.Close()

	s.Equal(http.StatusOK, meResp.StatusCode)

	var user dto.UserResponse
	s.Require().NoError(json.NewDecoder(meResp.Body).Decode(&user))
	s.Equal("chai", user.Username)
	s.Equal("chai@example.com", user.Email)
}

func (s *Suite) TestGetMe_Unauthorized() {
	req, err := http.NewRequest(http.MethodGet, s.BaseURL+"/api/v1/users/me", nil)
	s.Require().NoError(err)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestGetMe_CookieAuthentication() {
	resp := s.register("chai", "chai@example.com", "Password123")
	resp.Body.Close()

	authResp, loginResp := s.login("chai", "Password123")
	loginResp.Body.Close()

	req, err := http.NewRequest(http.MethodGet, s.BaseURL+"/api/v1/users/me", nil)
	s.Require().NoError(err)
	req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: authResp.AccessToken})

	meResp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer meResp.Body.Close()

	s.Equal(http.StatusOK, meResp.StatusCode)
}

func (s *Suite) TestChangePassword_Flow() {
	resp := s.register("chai", "chai@example.com", "Password123")
	resp.Body.Close()

	authResp, loginResp := s.login("chai", "Password123")
	loginResp.Body.Close()

	body, _ := json.Marshal(dto.ChangePasswordRequest{
		OldPassword: "Password123",
		NewPassword: "NewPassword123",
	})
	changeResp := s.authorizedRequest(http.MethodPost, "/api/v1/users/change-password",
		authResp.AccessToken, body, "application/json")
	changeResp.Body.Close()
	s.Require().Equal(http.StatusOK, changeResp.StatusCode)

	_, oldLogin := s.login("chai", "Password123")
	oldLogin.Body.Close()
	s.Equal(http.StatusUnauthorized, oldLogin.StatusCode)

	_, newLogin := s.login("chai", "NewPassword123")
	defer newLogin.Body.Close()
	s.Equal(http.StatusOK, newLogin.StatusCode)
}

func (s *Suite) TestChangePassword_WrongOldPassword() {
	resp := s.register("chai", "chai@example.com", "Password123")
	resp.Body.Close()

	authResp, loginResp := s.login("chai", "Password123")
	loginResp.Body.Close()

	body, _ := json.Marshal(dto.ChangePasswordRequest{
		OldPassword: "WrongPassword1",
		NewPassword: "NewPassword123",
	})
	changeResp := s.authorizedRequest(http.MethodPost, "/api/v1/users/change-password",
		authResp.AccessToken, body, "application/json")
	defer changeResp.Body.Close()

	s.Equal(http.StatusUnauthorized, changeResp.StatusCode)
}

func (s *Suite) TestUpdateAccount() {
	resp := s.register("chai", "chai@example.com", "Password123")
	resp.Body.Close()

	authResp, loginResp := s.login("chai", "Password123")
	loginResp.Body.Close()

	body, _ := json.Marshal(dto.UpdateAccountRequest{FullName: "Updated Name"})
	updateResp := s.authorizedRequest(http.MethodPatch, "/api/v1/users/update-account",
		authResp.AccessToken, body, "application/json")
	defer updateResp.Body.Close()

	s.Equal(http.StatusOK, updateResp.StatusCode)

	var user dto.UserResponse
	s.Require().NoError(json.NewDecoder(updateResp.Body).Decode(&user))
	s.Equal("Updated Name", user.FullName)
	s.Equal("chai@example.com", user.Email)
}

func (s *Suite) TestUpdateAvatar() {
	resp := s.register("chai", "chai@example.com", "Password123")
	resp.Body.Close()

	authResp, loginResp := s.login("chai", "Password123")
	loginResp.Body.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("avatar", "avatar.png")
	s.Require().NoError(err)
	_, err = part.Write([]byte("png-bytes"))
	s.Require().NoError(err)
	s.Require().NoError(writer.Close())

	avatarResp := s.authorizedRequest(http.MethodPatch, "/api/v1/users/avatar",
		authResp.AccessToken, buf.Bytes(), writer.FormDataContentType())
	defer avatarResp.Body.Close()

	s.Equal(http.StatusOK, avatarResp.StatusCode)

	var user dto.UserResponse
	s.Require().NoError(json.NewDecoder(avatarResp.Body).Decode(&user))
	s.True(strings.HasPrefix(user.AvatarURL, "https://media.test/avatars/"), user.AvatarURL)
}
