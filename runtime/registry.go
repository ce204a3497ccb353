package runtime

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Set map[string]struct{}

// Registry is the relay's session state. It has no lock: only the
// Controller goroutine may call its methods.
//
// Invariant: a name is in claimedNames if and only if exactly one session in
// sessions carries it.
type Registry struct {
	sessions     map[string]*domain.Session // map address -> Session
	claimedNames Set
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:     make(map[string]*domain.Session),
		claimedNames: make(Set),
	}
}

// Connect inserts a new unnamed session for address.
// If a stale session still occupies the address it is evicted first and
// returned so the caller can stop it; its name is released.
func (r *Registry) Connect(session *domain.Session) (evicted *domain.Session) {
	if previous, ok := r.sessions[session.Address]; ok {
		r.release(previous)
		evicted = previous
	}
	r.sessions[session.Address] = session
	return evicted
}

// Session returns the live session at address, provided it is the one
// identified by id. Events from a replaced connection do not match.
func (r *Registry) Session(address string, id uuid.UUID) (*domain.Session, bool) {
	session, ok := r.sessions[address]
	if !ok || session.ID != id {
		return nil, false
	}
	return session, true
}

// Claim gives name to the session at address.
// Asking again for the name already held succeeds without change; switching
// names releases the previous one only once the new one is secured.
// A refused claim leaves the registry untouched.
func (r *Registry) Claim(address string, id uuid.UUID, name string) error {
	session, ok := r.Session(address, id)
	if !ok {
		return errors.ErrUnknownSession
	}
	if session.Named && session.Username == name {
		return nil
	}
	if _, taken := r.claimedNames[name]; taken {
		return errors.ErrUsernameTaken
	}
	r.release(session)
	r.claimedNames[name] = struct{}{}
	session.Name(name)
	return nil
}

// Disconnect removes the session and frees its name.
// It reports false when the address is unknown or now belongs to another session.
func (r *Registry) Disconnect(address string, id uuid.UUID) (*domain.Session, bool) {
	session, ok := r.Session(address, id)
	if !ok {
		return nil, false
	}
	r.release(session)
	delete(r.sessions, address)
	return session, true
}

// Peers returns every session except the one at address.
func (r *Registry) Peers(address string) []*domain.Session {
	peers := make([]*domain.Session, 0, len(r.sessions))
	for addr, session := range r.sessions {
		if addr != address {
			peers = append(peers, session)
		}
	}
	return peers
}

// Names returns the claimed names in lexical order.
func (r *Registry) Names() []string {
	names := lo.Keys(r.claimedNames)
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int { return len(r.sessions) }

func (r *Registry) release(session *domain.Session) {
	if !session.Named {
		return
	}
	delete(r.claimedNames, session.Username)
	session.Username = ""
	session.Named = false
}
