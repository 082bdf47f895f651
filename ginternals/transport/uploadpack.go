package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elewis/gitgo/ginternals"
	"golang.org/x/xerrors"
)

// service is the smart-HTTP service name this client speaks
const service = "git-upload-pack"

// serviceHeader is the payload of the first pkt-line of a ref
// advertisement
const serviceHeader = "# service=" + service + "\n"

// uploadPackContentType is the content type of an upload-pack request
const uploadPackContentType = "application/x-git-" + service + "-request"

// nakPreamble prefixes an upload-pack response when side-band isn't
// negotiated: an 8-byte pkt-line carrying "NAK\n"
const nakPreamble = "0008NAK\n"

// Ref is a single advertised reference: a name and the Oid it points to
type Ref struct {
	Name string
	Oid  ginternals.Oid
}

// RefAdvertisement is the result of a ref-discovery request
type RefAdvertisement struct {
	// Head is the Oid the remote's HEAD resolves to, or the zero Oid
	// if HEAD wasn't advertised
	Head ginternals.Oid
	Refs []Ref
}

// DiscoverRefs performs the smart-HTTP ref discovery GET request and
// parses the pkt-line advertisement into a RefAdvertisement
func DiscoverRefs(ctx context.Context, client *http.Client, repoURL string) (*RefAdvertisement, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, repoURL+"/info/refs?service="+service, nil)
	if err != nil {
		return nil, xerrors.Errorf("could not build ref discovery request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, xerrors.Errorf("ref discovery request failed: %w", ginternals.ErrIO)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on a read-only response

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotModified {
		return nil, xerrors.Errorf("unexpected status %d: %w", resp.StatusCode, ginternals.ErrProtocolError)
	}

	r := bufio.NewReader(resp.Body)
	header, isFlush, err := readPktLine(r)
	if err != nil {
		return nil, xerrors.Errorf("could not read service header: %w", err)
	}
	if isFlush || string(header) != serviceHeader {
		return nil, xerrors.Errorf("expected %q, got %q: %w", serviceHeader, header, ginternals.ErrProtocolError)
	}

	if _, isFlush, err = readPktLine(r); err != nil {
		return nil, xerrors.Errorf("could not read flush after service header: %w", err)
	} else if !isFlush {
		return nil, xerrors.Errorf("expected flush after service header: %w", ginternals.ErrProtocolError)
	}

	adv := &RefAdvertisement{}
	first := true
	for {
		line, isFlush, err := readPktLine(r)
		if err != nil {
			return nil, xerrors.Errorf("could not read ref advertisement: %w", err)
		}
		if isFlush {
			break
		}

		payload := string(line)
		if first {
			// the first advertised ref line carries a trailing
			// "\0<capabilities>" we don't act on
			if idx := strings.IndexByte(payload, 0); idx >= 0 {
				payload = payload[:idx]
			}
			first = false
		}
		payload = strings.TrimSuffix(payload, "\n")

		parts := strings.SplitN(payload, " ", 2)
		if len(parts) != 2 {
			return nil, xerrors.Errorf("malformed ref line %q: %w", payload, ginternals.ErrProtocolError)
		}
		oid, name := parts[0], parts[1]

		// a server with no refs advertises a single capabilities^{}
		// placeholder ref; nothing to do with it
		if oid == strings.Repeat("0", ginternals.OidSize*2) {
			continue
		}

		id, err := ginternals.NewOidFromStr(oid)
		if err != nil {
			return nil, xerrors.Errorf("invalid oid %q: %w", oid, ginternals.ErrProtocolError)
		}

		if name == "HEAD" {
			adv.Head = id
		}
		adv.Refs = append(adv.Refs, Ref{Name: name, Oid: id})
	}

	return adv, nil
}

// Fetch performs the upload-pack POST negotiation, requesting every
// Oid in wants with no haves, no multi_ack, no side-band, and no
// shallow clone, and returns the raw packfile bytes received in
// response (the NAK preamble is stripped).
func Fetch(ctx context.Context, client *http.Client, repoURL string, wants []ginternals.Oid) (io.ReadCloser, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if len(wants) == 0 {
		return nil, errors.New("no wants provided")
	}

	var body bytes.Buffer
	for _, w := range wants {
		body.Write(encodePktLine(fmt.Sprintf("want %s\n", w.String())))
	}
	body.Write(encodeFlushPkt())
	body.Write(encodePktLine("done\n"))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, repoURL+"/"+service, &body)
	if err != nil {
		return nil, xerrors.Errorf("could not build upload-pack request: %w", err)
	}
	req.Header.Set("Content-Type", uploadPackContentType)

	resp, err := client.Do(req)
	if err != nil {
		return nil, xerrors.Errorf("upload-pack request failed: %w", ginternals.ErrIO)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close() //nolint:errcheck // best-effort close before returning the error
		return nil, xerrors.Errorf("unexpected status %d: %w", resp.StatusCode, ginternals.ErrProtocolError)
	}

	preamble := make([]byte, len(nakPreamble))
	if _, err = io.ReadFull(resp.Body, preamble); err != nil {
		resp.Body.Close() //nolint:errcheck // best-effort close before returning the error
		return nil, xerrors.Errorf("could not read NAK preamble: %w", ginternals.ErrProtocolError)
	}
	if string(preamble) != nakPreamble {
		resp.Body.Close() //nolint:errcheck // best-effort close before returning the error
		return nil, xerrors.Errorf("expected %q, got %q: %w", nakPreamble, preamble, ginternals.ErrProtocolError)
	}

	return resp.Body, nil
}
