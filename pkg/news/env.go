package news

import (
	"errors"
	"os"
)

// FromEnv assembles the source chain from whichever API keys are configured,
// in preference order. At least one key must be set.
func FromEnv() (Client, error) {
	var clients []Client

	if key := os.Getenv("FINNHUB_API_KEY"); key != "" {
		clients = append(clients, NewFinnHubClient(key))
	}
	if key := os.Getenv("ALPHA_VANTAGE_API_KEY"); key != "" {
		clients = append(clients, NewAlphaVantageClient(key))
	}
	if key := os.Getenv("MASSIVE_API_KEY"); key != "" {
		clients = append(clients, NewMassiveClient(key))
	}

	if len(clients) == 0 {
		return nil, errors.New("no news API keys configured (FINNHUB_API_KEY, ALPHA_VANTAGE_API_KEY or MASSIVE_API_KEY)")
	}

	return NewChain(clients...), nil
}
