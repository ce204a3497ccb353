package e2e

import (
	"chat-relay/domain"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type testChatSuite struct {
	BaseRelaySuite
}

func TestChatSuite(t *testing.T) {
	suite.Run(t, &testChatSuite{})
}

// unique keeps runs against a long-lived relay from colliding on names
func unique(name string) string {
	return name + "-" + uuid.NewString()[:8]
}

func (s *testChatSuite) TestTwoClientsChat() {
	alice, bob := unique("alice"), unique("bob")
	a, b := s.Dial(), s.Dial()

	s.Run("Step 1: both clients claim a name", func() {
		s.Step("Register " + alice + " and " + bob)
		s.Register(a, alice)
		s.Register(b, bob)
	})

	s.Run("Step 2: a message reaches the other client", func() {
		s.Step("Broadcast from " + alice)
		s.Require().NoError(a.Say("hi"))
		s.Require().Equal(domain.Broadcast{FromUsername: alice, Text: "hi"}, s.Receive(b))
	})
}

func (s *testChatSuite) TestNameTakenThenRetry() {
	alice := unique("alice")
	a, c := s.Dial(), s.Dial()

	s.Run("Step 1: the first client owns the name", func() {
		s.Register(a, alice)
	})

	s.Run("Step 2: a second claim is rejected", func() {
		s.Step("Claim " + alice + " twice")
		s.Require().NoError(c.SetUsername(alice))
		s.Require().Equal(domain.UsernameRejected{Reason: domain.ReasonNameTaken}, s.Receive(c))
	})

	s.Run("Step 3: the rejected client picks another name", func() {
		s.Register(c, unique("carol"))
	})
}
