package e2e

import (
	"chat-relay/client"
	"chat-relay/domain"
	"context"
	"fmt"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

const frameTimeout = 2 * time.Second

type BaseRelaySuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseRelaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.RelayAddr == "" {
		s.T().Skip("RELAY_ADDR not set, no relay to talk to")
	}
}

// Step prints a colorized header so each scenario step stands out in the logs
func (s *BaseRelaySuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Dial opens a client against the relay, closed at the end of the test
func (s *BaseRelaySuite) Dial() *client.Client {
	ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
	defer cancel()
	c, err := client.Dial(ctx, s.Config.RelayAddr, s.Config.MaxFrameSize)
	s.Require().NoError(err, "Failed to connect to relay at "+s.Config.RelayAddr)
	s.T().Cleanup(func() { _ = c.Close() })
	return c
}

// Receive waits for the next frame and logs it when E2E_DEBUG_FRAMES is enabled
func (s *BaseRelaySuite) Receive(c *client.Client) domain.ServerFrame {
	frame, err := c.NextWithin(frameTimeout)
	s.Require().NoError(err)
	if s.Config.DebugFrames {
		s.T().Logf("FRAME %s <- %#v", c.LocalAddr(), frame)
	}
	return frame
}

// Register claims name and requires the relay to accept it
func (s *BaseRelaySuite) Register(c *client.Client, name string) {
	s.Require().NoError(c.SetUsername(name))
	s.Require().Equal(domain.UsernameAccepted{}, s.Receive(c))
}
