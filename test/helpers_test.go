//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/2beens/bloglist/internal/auth"
	"github.com/2beens/bloglist/internal/blog"
	"github.com/2beens/bloglist/internal/users"
)

const (
	testUsername = "mluukkai"
	testName     = "Matti Luukkainen"
	testPassword = "salainen"
)

func (s *IntegrationTestSuite) doRequest(
	ctx context.Context,
	method, path, authToken string,
	body any,
) (*http.Response, []byte) {
	var reqBody io.Reader
	if body != nil {
		bodyJSON, err := json.Marshal(body)
		s.Require().NoError(err)
		reqBody = bytes.NewReader(bodyJSON)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	s.Require().NoError(err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	return resp, respBytes
}

func (s *IntegrationTestSuite) createUser(ctx context.Context, username, name, password string) users.User {
	resp, respBytes := s.doRequest(ctx, "POST", "/api/users", "", users.NewUserRequest{
		Username: username,
		Name:     name,
		Password: password,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(respBytes))

	var user users.User
	s.Require().NoError(json.Unmarshal(respBytes, &user))
	return user
}

func (s *IntegrationTestSuite) doLogin(ctx context.Context, username, password string) string {
	resp, respBytes := s.doRequest(ctx, "POST", "/api/login", "", auth.Credentials{
		Username: username,
		Password: password,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(respBytes))

	var loginResp auth.LoginResponse
	s.Require().NoError(json.Unmarshal(respBytes, &loginResp))
	s.Require().NotEmpty(loginResp.Token)

	return loginResp.Token
}

func (s *IntegrationTestSuite) getAllBlogs(ctx context.Context) []*blog.Blog {
	resp, respBytes := s.doRequest(ctx, "GET", "/api/blogs", "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var blogs []*blog.Blog
	s.Require().NoError(json.Unmarshal(respBytes, &blogs))
	return blogs
}

func (s *IntegrationTestSuite) createBlog(ctx context.Context, authToken string, body map[string]any) *blog.Blog {
	resp, respBytes := s.doRequest(ctx, "POST", "/api/blogs", authToken, body)
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(respBytes))

	var created blog.Blog
	s.Require().NoError(json.Unmarshal(respBytes, &created))
	return &created
}
