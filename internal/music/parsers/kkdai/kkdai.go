// Package kkdai streams YouTube audio through the kkdai/youtube client,
// decoding to PCM with an ffmpeg child process.
package kkdai

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"quaver/internal/music/parsers"

	youtube "github.com/kkdai/youtube/v2"
	"golang.org/x/net/proxy"
)

const (
	channels   = 2
	sampleRate = 48000
)

type KKDAIStreamer struct {
	client *youtube.Client
}

// New builds the streamer. proxyStr may be empty, an http(s) URL or a
// socks5 URL; anything else falls back to a direct client.
func New(proxyStr string) *KKDAIStreamer {
	return &KKDAIStreamer{client: newClient(proxyStr)}
}

func (s *KKDAIStreamer) GetLinkStream(ctx context.Context, req *parsers.Request, seekSec float64) (io.ReadCloser, func(), error) {
	return s.linkStream(ctx, req, seekSec)
}

func (s *KKDAIStreamer) GetPipeStream(ctx context.Context, req *parsers.Request, seekSec float64) (io.ReadCloser, func(), error) {
	return s.pipeStream(ctx, req, seekSec)
}

func (s *KKDAIStreamer) SupportsPipe() bool { return true }

func newClient(proxyStr string) *youtube.Client {
	base := &http.Client{Timeout: 15 * time.Second}

	if proxyStr == "" {
		return &youtube.Client{HTTPClient: base}
	}

	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		return &youtube.Client{HTTPClient: base}
	}

	var transport *http.Transport

	switch proxyURL.Scheme {
	case "http", "https":
		transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	case "socks5":
		auth := &proxy.Auth{}
		if proxyURL.User != nil {
			auth.User = proxyURL.User.Username()
			if pass, ok := proxyURL.User.Password(); ok {
				auth.Password = pass
			}
		}
		dialer, err := proxy.SOCKS5("tcp", proxyURL.Host, auth, &net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 10 * time.Second,
		})
		if err != nil {
			break
		}
		transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			},
		}
	}

	if transport == nil {
		return &youtube.Client{HTTPClient: base}
	}

	return &youtube.Client{
		HTTPClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
	}
}
