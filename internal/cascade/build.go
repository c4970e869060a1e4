package cascade

import (
	"fmt"
	"sort"
	"strings"
)

type candidate struct {
	parent  int64
	elapsed int64
}

// Build turns a raw record into a cascade.
//
// Each user keeps the terminal occurrence with the smallest elapsed time
// (first in input order on ties) and takes its parent from that same path.
// Malformed paths and orphaned users are dropped and reported as anomalies;
// a parent cycle is fatal for the record and returned as an error wrapping
// ErrCycleDetected.
func Build(r Record) (*Cascade, []Anomaly, error) {
	var anomalies []Anomaly
	report := func(kind AnomalyKind, user int64, detail string) {
		anomalies = append(anomalies, Anomaly{Kind: kind, MessageID: r.MessageID, UserID: user, Detail: detail})
	}

	best := make(map[int64]candidate)
	distinct := map[int64]struct{}{r.RootUserID: {}}
	for _, token := range r.Paths {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		p, err := ParsePath(token, r.RootUserID)
		if err != nil {
			report(MalformedPath, 0, err.Error())
			continue
		}
		if p.Repeated {
			report(MalformedPath, p.Terminal(), fmt.Sprintf("%q: repeated user in path", token))
		}
		for _, u := range p.Users {
			distinct[u] = struct{}{}
		}
		user := p.Terminal()
		if user == r.RootUserID {
			continue
		}
		parent := p.Users[len(p.Users)-2]
		if cur, ok := best[user]; ok && cur.elapsed <= p.Elapsed {
			continue
		}
		best[user] = candidate{parent: parent, elapsed: p.Elapsed}
	}

	users := make([]int64, 0, len(best))
	for u := range best {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })

	depth := make(map[int64]int, len(best))
	orphan := make(map[int64]bool)
	bound := len(distinct)
	for _, u := range users {
		var chain []int64
		base, lost := 0, false
		cur := u
		for {
			if cur == r.RootUserID {
				break
			}
			if d, ok := depth[cur]; ok {
				base = d
				break
			}
			if orphan[cur] {
				lost = true
				break
			}
			c, ok := best[cur]
			if !ok {
				lost = true
				break
			}
			chain = append(chain, cur)
			if len(chain) > bound {
				report(CycleDetected, u, fmt.Sprintf("parent walk exceeded %d users", bound))
				return nil, anomalies, fmt.Errorf("%w: cascade %d at user %d", ErrCycleDetected, r.MessageID, u)
			}
			cur = c.parent
		}
		for i := len(chain) - 1; i >= 0; i-- {
			if lost {
				orphan[chain[i]] = true
				report(OrphanUser, chain[i], fmt.Sprintf("parent chain stops at %d", cur))
				continue
			}
			base++
			depth[chain[i]] = base
		}
	}

	events := make([]RetweetEvent, 0, len(depth))
	for _, u := range users {
		d, ok := depth[u]
		if !ok {
			continue
		}
		c := best[u]
		events = append(events, RetweetEvent{UserID: u, ParentUserID: c.parent, Depth: d, ElapsedSeconds: c.elapsed})
	}
	return New(r.MessageID, r.RootUserID, r.PublishTime, r.DeclaredRetweetCount, events), anomalies, nil
}
