// Package robots answers "may we fetch this URL?" using each origin's
// robots.txt. Decisions are cached per origin for the life of the process so
// a topic's URL list hits each host's robots.txt at most once per expiry.
package robots

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Manager fetches and caches robots.txt rules per origin. The zero value is
// usable; an explicit instance replaces the ambient module-level cache the
// original scraper relied on.
type Manager struct {
	HTTPClient *http.Client
	UserAgent  string
	// EntryExpiry bounds how long cached rules are trusted. Zero means 30m.
	EntryExpiry time.Duration

	mu  sync.Mutex
	mem map[string]entry
	now func() time.Time
}

type entry struct {
	rules  rules
	expiry time.Time
}

// Allowed reports whether the URL may be fetched. The policy is lenient:
// unreachable or missing robots.txt allows the fetch, matching the source
// material's "only block when explicitly disallowed" stance.
func (m *Manager) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return true
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return true
	}
	origin := scheme + "://" + u.Host

	r, ok := m.cached(origin)
	if !ok {
		r = m.fetchRules(ctx, origin)
		m.store(origin, r)
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return r.isAllowed(m.UserAgent, path)
}

func (m *Manager) cached(origin string) (rules, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.now == nil {
		m.now = time.Now
	}
	if m.mem == nil {
		m.mem = make(map[string]entry)
	}
	e, ok := m.mem[origin]
	if !ok || m.now().After(e.expiry) {
		return rules{}, false
	}
	return e.rules, true
}

func (m *Manager) store(origin string, r rules) {
	exp := m.EntryExpiry
	if exp <= 0 {
		exp = 30 * time.Minute
	}
	m.mu.Lock()
	m.mem[origin] = entry{rules: r, expiry: m.now().Add(exp)}
	m.mu.Unlock()
}

// fetchRules downloads and parses <origin>/robots.txt. Any failure yields
// empty rules, which allow everything.
func (m *Manager) fetchRules(ctx context.Context, origin string) rules {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return rules{}
	}
	if m.UserAgent != "" {
		req.Header.Set("User-Agent", m.UserAgent)
	}
	client := m.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return rules{}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rules{}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return rules{}
	}
	return parseRules(string(body))
}

type group struct {
	agents   []string
	allow    []string
	disallow []string
}

type rules struct {
	groups []group
}

func parseRules(text string) rules {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var groups []group
	cur := group{}
	flush := func() {
		if len(cur.agents) == 0 && len(cur.allow) == 0 && len(cur.disallow) == 0 {
			return
		}
		groups = append(groups, cur)
		cur = group{}
	}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:colon]))
		val := strings.TrimSpace(line[colon+1:])
		switch key {
		case "user-agent", "useragent":
			// A user-agent line after directives starts a new group.
			if len(cur.agents) > 0 && (len(cur.allow) > 0 || len(cur.disallow) > 0) {
				flush()
			}
			cur.agents = append(cur.agents, strings.ToLower(val))
		case "allow":
			cur.allow = append(cur.allow, val)
		case "disallow":
			cur.disallow = append(cur.disallow, val)
		}
	}
	flush()
	return rules{groups: groups}
}

// isAllowed applies the most specific matching directive from the best
// matching user-agent group. Default is allow; on a specificity tie Allow
// beats Disallow.
func (r rules) isAllowed(userAgent, path string) bool {
	gi := r.groupFor(userAgent)
	if gi < 0 {
		return true
	}
	g := r.groups[gi]

	bestScore := -1
	bestAllow := true
	consider := func(patterns []string, allow bool) {
		for _, p := range patterns {
			if p == "" {
				continue
			}
			if !patternMatches(p, path) {
				continue
			}
			score := len(strings.ReplaceAll(strings.TrimSuffix(p, "$"), "*", ""))
			if score > bestScore || (score == bestScore && allow && !bestAllow) {
				bestScore = score
				bestAllow = allow
			}
		}
	}
	consider(g.disallow, false)
	consider(g.allow, true)
	if bestScore == -1 {
		return true
	}
	return bestAllow
}

// groupFor picks the group whose agent token best matches the user agent.
// Exact substrings beat the "*" wildcard; ties keep the first group.
func (r rules) groupFor(userAgent string) int {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	bestIdx, bestScore := -1, -1
	for i, g := range r.groups {
		for _, a := range g.agents {
			token := strings.TrimSpace(a)
			if token == "" {
				continue
			}
			var score int
			switch {
			case token == "*":
				score = 0
			case strings.Contains(ua, token):
				score = len(token)
			default:
				continue
			}
			if score > bestScore {
				bestScore, bestIdx = score, i
			}
		}
	}
	return bestIdx
}

// patternMatches supports the '*' wildcard and trailing '$' anchor, with the
// pattern anchored to the start of the path.
func patternMatches(pattern, path string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	p := strings.TrimSuffix(pattern, "$")
	var b strings.Builder
	b.WriteString("^")
	for _, rn := range p {
		if rn == '*' {
			b.WriteString(".*")
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(rn)))
	}
	if anchored {
		b.WriteString("$")
	}
	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(path)
}
