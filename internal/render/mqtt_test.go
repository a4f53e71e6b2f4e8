package render

import (
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doneToken struct {
	mqtt.Token
}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Error() error                   { return nil }

type stuckToken struct {
	mqtt.Token
	waited *time.Duration
}

func (s stuckToken) Wait() bool { panic("Wait must not be used") }
func (s stuckToken) WaitTimeout(d time.Duration) bool {
	*s.waited = d
	return false
}

type stuckClient struct {
	mqtt.Client
	waited time.Duration
	calls  int
}

func (s *stuckClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	s.calls++
	return stuckToken{waited: &s.waited}
}

type published struct {
	topic    string
	retained bool
	payload  string
}

type fakeClient struct {
	mqtt.Client
	sent []published
}

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.sent = append(f.sent, published{topic: topic, retained: retained, payload: payload.(string)})
	return doneToken{}
}

func TestMQTTMirrorsChanges(t *testing.T) {
	client := &fakeClient{}
	m := NewMQTT(NewPage(), client, "agnihotra/")

	require.NoError(t, m.SetText(UserLocation, "Your Location: Pune"))
	m.AppendLiveItem(UpcomingTimes, "Today's Sunset Countdown: ", "todayssunsetCountdown")
	require.NoError(t, m.SetText("todayssunsetCountdown", "2h 0m 0s"))
	m.SetVisible(LoadingSpinner, false)

	require.Len(t, client.sent, 4)
	assert.Equal(t, published{"agnihotra/userLocation", true, "Your Location: Pune"}, client.sent[0])
	assert.Equal(t, published{"agnihotra/upcomingTimes", true, "Today's Sunset Countdown: "}, client.sent[1])
	assert.Equal(t, published{"agnihotra/todayssunsetCountdown", true, "2h 0m 0s"}, client.sent[2])
	assert.Equal(t, published{"agnihotra/loadingSpinner", true, "false"}, client.sent[3])
}

func TestMQTTSkipsMissingElements(t *testing.T) {
	client := &fakeClient{}
	m := NewMQTT(NewPage(), client, "agnihotra")

	assert.ErrorIs(t, m.SetText("gone", "x"), ErrNoElement)
	assert.Empty(t, client.sent)
}

func TestMQTTDoesNotBlockOnSlowBroker(t *testing.T) {
	client := &stuckClient{}
	m := NewMQTT(NewPage(), client, "agnihotra")
	m.timeout = 10 * time.Millisecond

	m.AppendLiveItem(UpcomingTimes, "Today's Sunrise Countdown: ", "todayssunriseCountdown")
	assert.NotPanics(t, func() {
		require.NoError(t, m.SetText("todayssunriseCountdown", "1h 0m 0s"))
	})
	assert.Equal(t, 2, client.calls)
	assert.Equal(t, 10*time.Millisecond, client.waited)

	text, _ := m.Mirror.(*Page).Text("todayssunriseCountdown")
	assert.Equal(t, "1h 0m 0s", text)
}
