// Package codec turns domain frames into bytes and back.
//
// A frame payload is a CBOR map with small integer keys. The kind field
// selects the variant; the other fields are present only when the variant
// carries them. Payloads travel inside the length-prefixed framing defined
// in framing.go.
package codec

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

type kind uint8

// Client and server kinds live in disjoint ranges so a frame of one family
// never decodes as a frame of the other.
const (
	kindSetUsername kind = 1
	kindChatMessage kind = 2
)

const (
	kindUsernameAccepted kind = 16
	kindUsernameRejected kind = 17
	kindBroadcast        kind = 18
)

// Fields are pointers so an absent key can be told apart from an empty
// string: a variant's fields are required, even when empty.
type envelope struct {
	Kind   kind    `cbor:"1,keyasint"`
	Name   *string `cbor:"2,keyasint,omitempty"`
	Text   *string `cbor:"3,keyasint,omitempty"`
	Reason *string `cbor:"4,keyasint,omitempty"`
	From   *string `cbor:"5,keyasint,omitempty"`
}

// encMode uses Core Deterministic Encoding so the same frame always
// produces the same bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

func EncodeClient(frame domain.ClientFrame) ([]byte, error) {
	var env envelope
	switch f := frame.(type) {
	case domain.SetUsername:
		env = envelope{Kind: kindSetUsername, Name: &f.Name}
	case domain.ChatMessage:
		env = envelope{Kind: kindChatMessage, Text: &f.Text}
	default:
		return nil, fmt.Errorf("encode client frame: unsupported type %T", frame)
	}
	return encMode.Marshal(env)
}

func DecodeClient(data []byte) (domain.ClientFrame, error) {
	env, err := decode(data)
	if err != nil {
		return nil, err
	}
	switch env.Kind {
	case kindSetUsername:
		name, err := required(env.Name, "name")
		if err != nil {
			return nil, err
		}
		return domain.SetUsername{Name: name}, nil
	case kindChatMessage:
		text, err := required(env.Text, "text")
		if err != nil {
			return nil, err
		}
		return domain.ChatMessage{Text: text}, nil
	default:
		return nil, fmt.Errorf("%w: unknown client frame kind %d", errors.ErrDecode, env.Kind)
	}
}

func EncodeServer(frame domain.ServerFrame) ([]byte, error) {
	var env envelope
	switch f := frame.(type) {
	case domain.UsernameAccepted:
		env = envelope{Kind: kindUsernameAccepted}
	case domain.UsernameRejected:
		env = envelope{Kind: kindUsernameRejected, Reason: &f.Reason}
	case domain.Broadcast:
		env = envelope{Kind: kindBroadcast, From: &f.FromUsername, Text: &f.Text}
	default:
		return nil, fmt.Errorf("encode server frame: unsupported type %T", frame)
	}
	return encMode.Marshal(env)
}

func DecodeServer(data []byte) (domain.ServerFrame, error) {
	env, err := decode(data)
	if err != nil {
		return nil, err
	}
	switch env.Kind {
	case kindUsernameAccepted:
		return domain.UsernameAccepted{}, nil
	case kindUsernameRejected:
		reason, err := required(env.Reason, "reason")
		if err != nil {
			return nil, err
		}
		return domain.UsernameRejected{Reason: reason}, nil
	case kindBroadcast:
		from, err := required(env.From, "from")
		if err != nil {
			return nil, err
		}
		text, err := required(env.Text, "text")
		if err != nil {
			return nil, err
		}
		return domain.Broadcast{FromUsername: from, Text: text}, nil
	default:
		return nil, fmt.Errorf("%w: unknown server frame kind %d", errors.ErrDecode, env.Kind)
	}
}

// decode rejects anything that is not exactly one CBOR map, including
// trailing bytes after a valid item.
func decode(data []byte) (envelope, error) {
	var env envelope
	if len(data) == 0 {
		return env, fmt.Errorf("%w: empty payload", errors.ErrDecode)
	}
	if err := decMode.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("%w: %v", errors.ErrDecode, err)
	}
	return env, nil
}

func required(field *string, name string) (string, error) {
	if field == nil {
		return "", fmt.Errorf("%w: missing %s", errors.ErrDecode, name)
	}
	return *field, nil
}
