package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type movie struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Year    uint16 `json:"year"`
	WasGood bool   `json:"was_good"`
}

func main() {
	addr := flag.String("addr", "http://127.0.0.1:3000", "base url of the movie api")
	name := flag.String("name", "Inception", "movie name")
	year := flag.Uint("year", 2010, "release year")
	wasGood := flag.Bool("was-good", true, "whether the movie was good")
	flag.Parse()

	httpClient := &http.Client{Timeout: 10 * time.Second}

	payload, err := json.Marshal(movie{Name: *name, Year: uint16(*year), WasGood: *wasGood})
	if err != nil {
		log.Fatal().Err(err).Msg("Error encoding payload")
	}

	req, err := http.NewRequest(http.MethodPost, *addr+"/movie", bytes.NewReader(payload))
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		log.Fatal().Err(err).Msg("Error sending request")
	}
	defer resp.Body.Close()
	d, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal().Err(err).Msg("Error reading response")
	}
	log.Debug().Int("status", resp.StatusCode).
		RawJSON("body", d).
		Msg("Check movie creation response")
	if resp.StatusCode != http.StatusCreated {
		log.Fatal().Int("status", resp.StatusCode).Msg("movie was not created")
	}

	var created movie
	if err := json.Unmarshal(d, &created); err != nil {
		log.Fatal().Err(err).Msg("Error decoding response")
	}
	log.Debug().Str("id", created.ID).Msg("Extracted movie ID")

	resp, err = httpClient.Get(*addr + "/movie/" + created.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("Error sending request")
	}
	defer resp.Body.Close()
	d, err = io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal().Err(err).Msg("Error reading response")
	}

	log.Debug().Int("status", resp.StatusCode).
		Str("body", string(d)).
		Msg("Check movie fetch response")
}
