package inspect

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/danmuck/beacon/internal/observability"
	"github.com/danmuck/beacon/internal/protocol"
	"github.com/danmuck/beacon/internal/protocol/bleadv"
	"github.com/danmuck/beacon/internal/protocol/lanrecord"
)

const reasonBadRequest = "bad_request"

var errBadRequest = errors.New("inspect: bad request")

// Binary fields travel as lowercase hex.
type advertisementView struct {
	Profile       string `json:"profile"`
	Version       int    `json:"version"`
	SocketVersion int    `json:"socket_version"`
	ServiceIDHash string `json:"service_id_hash,omitempty"`
	Data          string `json:"data"`
	DeviceToken   string `json:"device_token,omitempty"`
	Length        int    `json:"length,omitempty"`
}

type recordView struct {
	Version           int    `json:"version"`
	PCP               string `json:"pcp"`
	EndpointID        string `json:"endpoint_id"`
	ServiceIDHash     string `json:"service_id_hash"`
	UWBAddress        string `json:"uwb_address,omitempty"`
	WebRTCConnectable bool   `json:"webrtc_connectable"`
	EndpointInfo      string `json:"endpoint_info,omitempty"`
}

type advertisementDecodeRequest struct {
	Profile string `json:"profile"`
	Payload string `json:"payload"`
}

type recordDecodeRequest struct {
	Text     string `json:"text"`
	Envelope string `json:"envelope"`
}

type recordEncodeRequest struct {
	recordView
	Envelope string `json:"envelope"`
}

func (s *Server) decodeAdvertisement(c *gin.Context) {
	var req advertisementDecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	profile, err := parseProfile(req.Profile)
	if err != nil {
		badRequest(c, err)
		return
	}
	payload, err := decodeHexField("payload", req.Payload)
	if err != nil {
		badRequest(c, err)
		return
	}

	adv, err := bleadv.ParseProfile(payload, profile)
	observability.RecordDecode("bleadv", profile.String(), protocol.Reason(err), len(payload))
	if err != nil {
		rejected(c, err)
		return
	}
	view := viewAdvertisement(adv)
	view.Length = len(payload)
	c.JSON(http.StatusOK, view)
}

func (s *Server) encodeAdvertisement(c *gin.Context) {
	var req advertisementView
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	adv, err := buildAdvertisement(req)
	if err != nil {
		if errors.Is(err, errBadRequest) {
			badRequest(c, err)
			return
		}
		rejected(c, err)
		return
	}
	payload := adv.Bytes()
	observability.RecordEncode("bleadv", adv.Profile().String(), len(payload))
	c.JSON(http.StatusOK, gin.H{
		"profile": adv.Profile().String(),
		"payload": hex.EncodeToString(payload),
		"length":  len(payload),
	})
}

func (s *Server) decodeRecord(c *gin.Context) {
	var req recordDecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	codec, err := s.codecFor(req.Envelope)
	if err != nil {
		badRequest(c, err)
		return
	}
	rec, err := codec.DecodeText(req.Text)
	observability.RecordDecode("lanrecord", "text", protocol.Reason(err), len(req.Text))
	if err != nil {
		rejected(c, err)
		return
	}
	c.JSON(http.StatusOK, viewRecord(rec))
}

func (s *Server) encodeRecord(c *gin.Context) {
	var req recordEncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	codec, err := s.codecFor(req.Envelope)
	if err != nil {
		badRequest(c, err)
		return
	}
	rec, err := buildRecord(req.recordView)
	if err != nil {
		if errors.Is(err, errBadRequest) {
			badRequest(c, err)
			return
		}
		rejected(c, err)
		return
	}
	raw := rec.Bytes()
	text := codec.EncodeText(rec)
	observability.RecordEncode("lanrecord", "text", len(text))
	c.JSON(http.StatusOK, gin.H{
		"text":    text,
		"payload": hex.EncodeToString(raw),
		"length":  len(raw),
	})
}

func (s *Server) codecFor(envelope string) (lanrecord.Codec, error) {
	if strings.TrimSpace(envelope) == "" {
		return s.Codec, nil
	}
	env, err := lanrecord.EnvelopeByName(envelope)
	if err != nil {
		return lanrecord.Codec{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return lanrecord.NewCodec(env), nil
}

func badRequest(c *gin.Context, err error) {
	c.Set(observability.ReasonKey, reasonBadRequest)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": reasonBadRequest})
}

func rejected(c *gin.Context, err error) {
	reason := protocol.Reason(err)
	c.Set(observability.ReasonKey, reason)
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "reason": reason})
}

func parseProfile(raw string) (bleadv.Profile, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "full":
		return bleadv.ProfileFull, nil
	case "fast":
		return bleadv.ProfileFast, nil
	default:
		return bleadv.ProfileFull, fmt.Errorf("%w: unknown profile %q", errBadRequest, raw)
	}
}

func decodeHexField(field, raw string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errBadRequest, field, err)
	}
	return b, nil
}

func viewAdvertisement(adv *bleadv.Advertisement) advertisementView {
	return advertisementView{
		Profile:       adv.Profile().String(),
		Version:       int(adv.Version()),
		SocketVersion: int(adv.SocketVersion()),
		ServiceIDHash: hex.EncodeToString(adv.ServiceIDHash()),
		Data:          hex.EncodeToString(adv.Data()),
		DeviceToken:   hex.EncodeToString(adv.DeviceToken()),
	}
}

func buildAdvertisement(v advertisementView) (*bleadv.Advertisement, error) {
	profile, err := parseProfile(v.Profile)
	if err != nil {
		return nil, err
	}
	data, err := decodeHexField("data", v.Data)
	if err != nil {
		return nil, err
	}
	token, err := decodeHexField("device_token", v.DeviceToken)
	if err != nil {
		return nil, err
	}
	version, err := bleadv.ParseVersion(v.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	socketVersion, err := bleadv.ParseSocketVersion(v.SocketVersion)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	if profile == bleadv.ProfileFast {
		return bleadv.NewFast(version, socketVersion, data, token)
	}
	hash, err := decodeHexField("service_id_hash", v.ServiceIDHash)
	if err != nil {
		return nil, err
	}
	return bleadv.New(version, socketVersion, hash, data, token)
}

func viewRecord(rec *lanrecord.ServiceRecord) recordView {
	return recordView{
		Version:           int(rec.Version()),
		PCP:               rec.PCP().String(),
		EndpointID:        rec.EndpointID(),
		ServiceIDHash:     hex.EncodeToString(rec.ServiceIDHash()),
		UWBAddress:        hex.EncodeToString(rec.UWBAddress()),
		WebRTCConnectable: rec.WebRTCConnectable(),
		EndpointInfo:      hex.EncodeToString(rec.EndpointInfo()),
	}
}

func buildRecord(v recordView) (*lanrecord.ServiceRecord, error) {
	pcp, err := lanrecord.ParsePCP(strings.ToLower(strings.TrimSpace(v.PCP)))
	if err != nil {
		return nil, err
	}
	hash, err := decodeHexField("service_id_hash", v.ServiceIDHash)
	if err != nil {
		return nil, err
	}
	uwb, err := decodeHexField("uwb_address", v.UWBAddress)
	if err != nil {
		return nil, err
	}
	info, err := decodeHexField("endpoint_info", v.EndpointInfo)
	if err != nil {
		return nil, err
	}
	webRTC := lanrecord.WebRTCUnconnectable
	if v.WebRTCConnectable {
		webRTC = lanrecord.WebRTCConnectable
	}
	version := lanrecord.VersionV1
	if v.Version != 0 {
		if version, err = lanrecord.ParseVersion(v.Version); err != nil {
			return nil, fmt.Errorf("%w: %w", errBadRequest, err)
		}
	}
	return lanrecord.New(version, pcp, v.EndpointID, hash, info, uwb, webRTC)
}
