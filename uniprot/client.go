/*
 * client.go, part of trpprep
 *
 * Copyright 2024 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */

package uniprot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/rmera/trpprep/internal/ctxlog"
)

// DefaultBaseURL is the UniProtKB REST endpoint.
const DefaultBaseURL = "https://rest.uniprot.org/uniprotkb"

// ErrStatus is returned when the server answers with a status other than 200.
var ErrStatus = errors.New("uniprot: unexpected HTTP status")

// Client gets entries from the UniProtKB REST API.
type Client struct {
	BaseURL  string
	HTTP     *http.Client
	PageSize int //entries per search page, the server's default if 0.
}

// NewClient returns a client for the public UniProtKB server.
func NewClient() *Client {
	return &Client{
		BaseURL:  DefaultBaseURL,
		HTTP:     &http.Client{Timeout: 2 * time.Minute},
		PageSize: 100,
	}
}

func (C *Client) httpClient() *http.Client {
	if C.HTTP == nil {
		return http.DefaultClient
	}
	return C.HTTP
}

func (C *Client) baseURL() string {
	if C.BaseURL == "" {
		return DefaultBaseURL
	}
	return C.BaseURL
}

// get requests u and decodes the entries in the answer. It also returns the URL of the
// next page of results, from the Link header, if any.
func (C *Client) get(ctx context.Context, u string) ([]Entry, string, error) {
	log := ctxlog.FromContext(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", fmt.Errorf("uniprot: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")
	log.Debug("Making HTTP request", "url", u)
	resp, err := C.httpClient().Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("uniprot: failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("%w: %s for %s: %s", ErrStatus, resp.Status, u, msg)
	}
	entries, err := Decode(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", u, err)
	}
	return entries, nextLink(resp.Header.Values("Link")), nil
}

var nextRe = regexp.MustCompile(`<([^>]+)>\s*;\s*rel="next"`)

// nextLink returns the URL marked as rel="next" in Link headers.
func nextLink(headers []string) string {
	for _, h := range headers {
		if m := nextRe.FindStringSubmatch(h); m != nil {
			return m[1]
		}
	}
	return ""
}

// Search returns all the entries that match the query, following the pagination of the results.
func (C *Client) Search(ctx context.Context, query string) ([]Entry, error) {
	v := url.Values{}
	v.Set("query", query)
	v.Set("format", "xml")
	if C.PageSize > 0 {
		v.Set("size", strconv.Itoa(C.PageSize))
	}
	next := C.baseURL() + "/search?" + v.Encode()
	var ret []Entry
	for page := 1; next != ""; page++ {
		entries, n, err := C.get(ctx, next)
		if err != nil {
			return nil, err
		}
		ctxlog.FromContext(ctx).Debug("Got search results", "page", page, "entries", len(entries))
		ret = append(ret, entries...)
		next = n
	}
	return ret, nil
}

// Entry returns the entries for the given accession (usually one).
func (C *Client) Entry(ctx context.Context, accession string) ([]Entry, error) {
	entries, _, err := C.get(ctx, C.baseURL()+"/"+url.PathEscape(accession)+".xml")
	return entries, err
}
