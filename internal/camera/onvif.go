package camera

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tidyspot/internal/model"
	"tidyspot/internal/store"
)

const (
	onvifSnapshotTimeout = 15 * time.Second
	wsDiscoveryAddr      = "239.255.255.250:3702"
)

const wsDiscoveryProbe = `<?xml version="1.0" encoding="UTF-8"?>
<e:Envelope xmlns:e="http://www.w3.org/2003/05/soap-envelope"
            xmlns:w="http://schemas.xmlsoap.org/ws/2004/08/addressing"
            xmlns:d="http://schemas.xmlsoap.org/ws/2005/04/discovery"
            xmlns:dn="http://www.onvif.org/ver10/network/wsdl">
  <e:Header>
    <w:MessageID>uuid:%s</w:MessageID>
    <w:To e:mustUnderstand="true">urn:schemas-xmlsoap-org:ws:2005:04:discovery</w:To>
    <w:Action e:mustUnderstand="true">http://schemas.xmlsoap.org/ws/2005/04/discovery/Probe</w:Action>
  </e:Header>
  <e:Body>
    <d:Probe><d:Types>dn:NetworkVideoTransmitter</d:Types></d:Probe>
  </e:Body>
</e:Envelope>`

const getSnapshotURIRequest = `<?xml version="1.0" encoding="UTF-8"?>
<s:Envelope xmlns:s="http://www.w3.org/2003/05/soap-envelope">
  <s:Body xmlns:trt="http://www.onvif.org/ver10/media/wsdl">
    <trt:GetSnapshotUri><trt:ProfileToken>Profile_1</trt:ProfileToken></trt:GetSnapshotUri>
  </s:Body>
</s:Envelope>`

// ONVIFAdapter talks to ONVIF cameras: WS-Discovery multicast for listing,
// one GetSnapshotUri metadata query plus an authenticated GET for frames.
type ONVIFAdapter struct {
	cameras          store.Cameras
	log              zerolog.Logger
	client           *resty.Client
	discoveryTimeout time.Duration
}

func NewONVIFAdapter(cams store.Cameras, discoveryTimeout time.Duration, log zerolog.Logger) *ONVIFAdapter {
	return &ONVIFAdapter{
		cameras:          cams,
		log:              log,
		client:           resty.New().SetTimeout(onvifSnapshotTimeout),
		discoveryTimeout: discoveryTimeout,
	}
}

func (a *ONVIFAdapter) Snapshot(ctx context.Context, id string) ([]byte, error) {
	cam, err := a.cameras.Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, newError(KindNotFound, "camera %s not registered", id)
		}
		return nil, err
	}
	if cam.Username == "" {
		return nil, newError(KindAuth, "onvif camera %s has no credentials configured", id)
	}

	snapshotURI, err := a.snapshotURI(ctx, cam)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.R().SetContext(ctx).
		SetBasicAuth(cam.Username, cam.Password).
		Get(snapshotURI)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	switch {
	case resp.StatusCode() == http.StatusUnauthorized:
		return nil, newError(KindAuth, "snapshot endpoint rejected credentials")
	case resp.StatusCode() != http.StatusOK:
		return nil, newError(KindUnknown, "snapshot endpoint returned HTTP %d", resp.StatusCode())
	}
	body := resp.Body()
	if !validImageMagic(body) {
		return nil, newError(KindUnknown, "snapshot endpoint returned non-image data")
	}
	return body, nil
}

// snapshotURI queries the device's media service for its snapshot endpoint.
func (a *ONVIFAdapter) snapshotURI(ctx context.Context, cam *model.Camera) (string, error) {
	endpoint := strings.TrimRight(cam.URL, "/") + "/onvif/media_service"
	resp, err := a.client.R().SetContext(ctx).
		SetHeader("Content-Type", "application/soap+xml").
		SetBasicAuth(cam.Username, cam.Password).
		SetBody(getSnapshotURIRequest).
		Post(endpoint)
	if err != nil {
		return "", classifyTransportError(err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return "", newError(KindAuth, "media service rejected credentials")
	}
	if resp.StatusCode() != http.StatusOK {
		return "", newError(KindUnknown, "media service returned HTTP %d", resp.StatusCode())
	}
	uri := extractXMLValue(resp.String(), "Uri")
	if uri == "" {
		return "", newError(KindUnknown, "media service response had no snapshot uri")
	}
	return uri, nil
}

func (a *ONVIFAdapter) List(ctx context.Context) ([]model.CameraInfo, error) {
	return listRegistered(ctx, a.cameras, "onvif")
}

// Discover multicasts a WS-Discovery probe and collects responders until the
// window closes. Best effort: an unreachable network yields an empty list.
func (a *ONVIFAdapter) Discover(ctx context.Context) ([]model.CameraInfo, error) {
	raddr, err := net.ResolveUDPAddr("udp4", wsDiscoveryAddr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, newError(KindNetwork, "discovery socket: %v", err)
	}
	defer func() { _ = conn.Close() }()

	probe := fmt.Sprintf(wsDiscoveryProbe, uuid.NewString())
	if _, err := conn.WriteTo([]byte(probe), raddr); err != nil {
		return nil, newError(KindNetwork, "discovery probe: %v", err)
	}

	deadline := time.Now().Add(a.discoveryTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)

	var out []model.CameraInfo
	seen := make(map[string]bool)
	buf := make([]byte, 64*1024)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			break // window closed
		}
		xaddr := extractXMLValue(string(buf[:n]), "XAddrs")
		if xaddr == "" {
			continue
		}
		// XAddrs can hold several space-separated URLs; keep the first.
		if i := strings.IndexByte(xaddr, ' '); i > 0 {
			xaddr = xaddr[:i]
		}
		if seen[xaddr] {
			continue
		}
		seen[xaddr] = true
		out = append(out, model.CameraInfo{
			ID:   "onvif_" + from.(*net.UDPAddr).IP.String(),
			Name: "ONVIF device " + from.(*net.UDPAddr).IP.String(),
			Live: true,
			URL:  xaddr,
		})
	}
	return out, nil
}

// extractXMLValue pulls the text of the first element with the given local
// name, tolerating arbitrary namespace prefixes.
func extractXMLValue(doc, local string) string {
	open := ":" + local + ">"
	i := strings.Index(doc, open)
	if i < 0 {
		open = "<" + local + ">"
		i = strings.Index(doc, open)
		if i < 0 {
			return ""
		}
	}
	rest := doc[i+len(open):]
	j := strings.Index(rest, "</")
	if j < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:j])
}
