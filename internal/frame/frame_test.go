package frame

import (
	"bytes"
	"io"
	"testing"
)

func TestHeaderRoundTripsSmallLengths(t *testing.T) {
	for _, length := range []int{1, 13, 63} {
		h := Header{Endpoint: EndpointApp, Length: length}
		b, err := EncodeHeader(h)
		if err != nil {
			t.Fatalf("EncodeHeader(%+v): %v", h, err)
		}
		got, err := ParseHeader(b)
		if err != nil {
			t.Fatalf("ParseHeader(%#x): %v", b, err)
		}
		if got != h {
			t.Fatalf("round trip: got %+v, want %+v", got, h)
		}
	}
}

func TestHeaderRoundTripsMaxLength(t *testing.T) {
	h := Header{Endpoint: EndpointFirmware, Length: 128}
	b, err := EncodeHeader(h)
	if err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}
	got, err := ParseHeader(b)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if got != h {
		t.Fatalf("got %+v, want %+v", got, h)
	}
}

func TestEncodeHeaderRejectsOutOfRangeLength(t *testing.T) {
	if _, err := EncodeHeader(Header{Endpoint: EndpointApp, Length: 0}); err == nil {
		t.Fatal("expected error for length 0")
	}
	if _, err := EncodeHeader(Header{Endpoint: EndpointApp, Length: 200}); err == nil {
		t.Fatal("expected error for length 200")
	}
}

func TestWriteFrameThenReadFrame(t *testing.T) {
	var buf bytes.Buffer
	f := Frame{Header: Header{Endpoint: EndpointApp, Length: 4}, Body: []byte{1, 2, 3, 4}}
	if err := WriteFrame(&buf, f); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if got.Header != f.Header || !bytes.Equal(got.Body, f.Body) {
		t.Fatalf("got %+v, want %+v", got, f)
	}
}

func TestWriteFrameRejectsBodyLengthMismatch(t *testing.T) {
	var buf bytes.Buffer
	f := Frame{Header: Header{Endpoint: EndpointApp, Length: 4}, Body: []byte{1, 2, 3}}
	if err := WriteFrame(&buf, f); err == nil {
		t.Fatal("expected ErrMalformedFrame for body/length mismatch")
	}
}

func TestReadFrameReturnsEOFOnEmptyStream(t *testing.T) {
	var buf bytes.Buffer
	if _, err := ReadFrame(&buf); err != io.EOF {
		t.Fatalf("got %v, want io.EOF", err)
	}
}

func TestReadFrameReturnsUnexpectedEOFOnTruncatedBody(t *testing.T) {
	h, err := EncodeHeader(Header{Endpoint: EndpointApp, Length: 4})
	if err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}
	buf := bytes.NewBuffer([]byte{h, 1, 2})
	if _, err := ReadFrame(buf); err != io.ErrUnexpectedEOF {
		t.Fatalf("got %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestWriteNOKEchoesEndpoint(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteNOK(&buf, Header{Endpoint: EndpointFirmware, Length: 1}); err != nil {
		t.Fatalf("WriteNOK: %v", err)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if got.Header.Endpoint != EndpointFirmware || got.Header.Length != 1 {
		t.Fatalf("got %+v, want endpoint=firmware length=1", got.Header)
	}
}

func TestEndpointSurvivesAllFourCodes(t *testing.T) {
	for _, ep := range []Endpoint{0, 1, 2, 3} {
		h := Header{Endpoint: ep, Length: 1}
		b, err := EncodeHeader(h)
		if err != nil {
			t.Fatalf("EncodeHeader(%v): %v", ep, err)
		}
		got, err := ParseHeader(b)
		if err != nil {
			t.Fatalf("ParseHeader: %v", err)
		}
		if got.Endpoint != ep {
			t.Fatalf("got endpoint %v, want %v", got.Endpoint, ep)
		}
	}
}
