// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blinklabs-io/leapfrog/api"
	"github.com/blinklabs-io/leapfrog/internal/config"
)

const clientTimeout = 30 * time.Second

var errNoConfig = errors.New("no config found in context")

// apiClient talks to the v1 API of a running node and prints the JSON
// responses
type apiClient struct {
	http    *http.Client
	out     io.Writer
	baseUrl string
	signer  string
}

func newApiClient(cmd *cobra.Command) (*apiClient, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return nil, errNoConfig
	}
	baseUrl := globalFlags.server
	if baseUrl == "" {
		host := cfg.BindAddr
		if host == "" || host == "0.0.0.0" {
			host = "127.0.0.1"
		}
		baseUrl = fmt.Sprintf("http://%s:%d", host, cfg.ApiPort)
	}
	return &apiClient{
		http:    &http.Client{Timeout: clientTimeout},
		out:     cmd.OutOrStdout(),
		baseUrl: strings.TrimSuffix(baseUrl, "/"),
		signer:  globalFlags.signer,
	}, nil
}

func (c *apiClient) do(
	ctx context.Context,
	method string,
	path string,
	body any,
) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(
		ctx,
		method,
		c.baseUrl+"/v1"+path,
		reqBody,
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.signer != "" {
		req.Header.Set(api.SignerHeader, c.signer)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr api.Error
		if err := json.Unmarshal(respBody, &apiErr); err != nil || apiErr.Error == "" {
			return fmt.Errorf("%s %s: %s", method, path, resp.Status)
		}
		return fmt.Errorf("%s (%s)", apiErr.Error, apiErr.Kind)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, respBody, "", "  "); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	pretty.WriteByte('\n')
	_, err = c.out.Write(pretty.Bytes())
	return err
}

func (c *apiClient) get(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *apiClient) post(ctx context.Context, path string, body any) error {
	return c.do(ctx, http.MethodPost, path, body)
}

// clientRunE wraps a client command body
func clientRunE(
	fn func(cmd *cobra.Command, c *apiClient, args []string) error,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := newApiClient(cmd)
		if err != nil {
			return err
		}
		return fn(cmd, c, args)
	}
}

// getCommand builds a command that fetches a single path built from its
// argument
func getCommand(use, short string, path func(arg string) string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: clientRunE(func(cmd *cobra.Command, c *apiClient, args []string) error {
			return c.get(cmd.Context(), path(args[0]))
		}),
	}
}

// postCommand builds a command that posts an empty body to a path built
// from its argument
func postCommand(use, short string, path func(arg string) string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: clientRunE(func(cmd *cobra.Command, c *apiClient, args []string) error {
			return c.post(cmd.Context(), path(args[0]), nil)
		}),
	}
}
