package config

import "time"

func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{projectID: projectID, location: location}
}

func NewProvidersForTest(linkdKey, rapidKey, signalHireKey, signalHireCallback, emailFinderURL string) *Providers {
	return &Providers{
		linkdAPIKey:           linkdKey,
		rapidAPIKey:           rapidKey,
		signalHireAPIKey:      signalHireKey,
		signalHireCallbackURL: signalHireCallback,
		emailFinderURL:        emailFinderURL,
		timeout:               time.Second,
	}
}

func NewGoogleForTest(clientID, clientSecret, redirectURL, stateSecret string) *Google {
	return &Google{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		stateSecret:  stateSecret,
	}
}

func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}
