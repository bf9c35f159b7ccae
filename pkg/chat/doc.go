// Package chat is a thin client for the OpenAI Chat Completions endpoint.
//
// A Client is built once from a Config and is safe for concurrent use. It
// exposes two calls that share a single dispatch path:
//
//	resp, err := c.Send(ctx, chat.Prompt("Hello"))      // buffered JSON
//	body, err := c.Stream(ctx, chat.Prompt("Hello"))    // raw SSE bytes
//
// Stream hands back the transport's response body untouched. Callers own it
// and must close it; package sse can decode the frames if needed.
package chat
