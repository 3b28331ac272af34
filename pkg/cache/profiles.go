package cache

import (
	"sync"
	"time"
)

// Response length thresholds for the preferred-length bucket.
const (
	shortResponseMax = 150
	longResponseMin  = 300
)

// profileStore owns all user behavior profiles. One profile exists
// per user ID; profiles are created lazily on first insert, mutated
// only on insert, and never removed within the process lifetime. A
// single mutex serializes updates so concurrent requests in one
// session cannot lose writes.
type profileStore struct {
	mu        sync.Mutex
	profiles  map[string]*UserBehaviorProfile
	maxTopics int
	now       func() time.Time
}

func newProfileStore(maxTopics int, now func() time.Time) *profileStore {
	return &profileStore{
		profiles:  make(map[string]*UserBehaviorProfile),
		maxTopics: maxTopics,
		now:       now,
	}
}

// recordInsert folds one answered query into the user's rolling
// profile: pushes the dominant topic onto the bounded recency list,
// recomputes the length bucket from the response length, and averages
// the response time preference with the new observation.
func (p *profileStore) recordInsert(userID, topic string, responseLen int, responseTimeMs int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prof, ok := p.profiles[userID]
	if !ok {
		prof = &UserBehaviorProfile{
			UserID:                 userID,
			PreferredLength:        LengthMedium,
			ResponseTimePreference: float64(responseTimeMs),
		}
		p.profiles[userID] = prof
	} else {
		prof.ResponseTimePreference = (prof.ResponseTimePreference + float64(responseTimeMs)) / 2
	}

	if topic != "" {
		prof.RecentTopics = append([]string{topic}, prof.RecentTopics...)
		if len(prof.RecentTopics) > p.maxTopics {
			prof.RecentTopics = prof.RecentTopics[:p.maxTopics]
		}
	}

	prof.PreferredLength = lengthBucket(responseLen)
	prof.LastActivity = p.now()
}

// lengthBucket classifies a response length.
func lengthBucket(n int) LengthBucket {
	switch {
	case n < shortResponseMax:
		return LengthShort
	case n > longResponseMin:
		return LengthLong
	default:
		return LengthMedium
	}
}

// profile returns a copy of the user's profile, if one exists.
func (p *profileStore) profile(userID string) (UserBehaviorProfile, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prof, ok := p.profiles[userID]
	if !ok {
		return UserBehaviorProfile{}, false
	}
	out := *prof
	out.RecentTopics = append([]string(nil), prof.RecentTopics...)
	return out, true
}

func (p *profileStore) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.profiles)
}

func (p *profileStore) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles = make(map[string]*UserBehaviorProfile)
}
