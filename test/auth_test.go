//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/2beens/bloglist/internal/auth"
)

func (s *IntegrationTestSuite) TestUsers_Create() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	user := s.createUser(ctx, testUsername, testName, testPassword)
	s.NotEmpty(user.ID)
	s.Equal(testUsername, user.Username)
	s.Empty(user.PasswordHash)

	for name, body := range map[string]map[string]string{
		"duplicate username": {"username": testUsername, "name": "other", "password": "secret"},
		"short username":     {"username": "ab", "name": "other", "password": "secret"},
		"short password":     {"username": "someone", "name": "other", "password": "pw"},
		"missing password":   {"username": "someone", "name": "other"},
	} {
		s.Run(name, func() {
			resp, respBytes := s.doRequest(ctx, "POST", "/api/users", "", body)
			s.Equal(http.StatusBadRequest, resp.StatusCode)

			var errResp map[string]string
			s.Require().NoError(json.Unmarshal(respBytes, &errResp))
			s.NotEmpty(errResp["error"])
		})
	}

	resp, respBytes := s.doRequest(ctx, "GET", "/api/users", "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.NotContains(string(respBytes), "password")
	var allUsers []map[string]any
	s.Require().NoError(json.Unmarshal(respBytes, &allUsers))
	s.Len(allUsers, 1)
}

func (s *IntegrationTestSuite) TestLogin_Logout() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.createUser(ctx, testUsername, testName, testPassword)

	s.Run("wrong password", func() {
		resp, respBytes := s.doRequest(ctx, "POST", "/api/login", "", auth.Credentials{
			Username: testUsername,
			Password: "wrong",
		})
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
		s.JSONEq(`{"error":"invalid username or password"}`, string(respBytes))
	})

	s.Run("unknown user", func() {
		resp, _ := s.doRequest(ctx, "POST", "/api/login", "", auth.Credentials{
			Username: "nobody",
			Password: testPassword,
		})
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	})

	s.Run("login then logout", func() {
		token := s.doLogin(ctx, testUsername, testPassword)

		// token works
		resp, _ := s.doRequest(ctx, "GET", "/api/blogs", token, nil)
		s.Equal(http.StatusOK, resp.StatusCode)

		resp, respBytes := s.doRequest(ctx, "POST", "/api/logout", token, nil)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		s.JSONEq(`{"loggedOut":true}`, string(respBytes))

		// and is rejected after logout
		resp, _ = s.doRequest(ctx, "GET", "/api/blogs", token, nil)
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	})

	s.Run("garbage token", func() {
		resp, _ := s.doRequest(ctx, "GET", "/api/blogs", "not-a-real-token", nil)
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	})
}
