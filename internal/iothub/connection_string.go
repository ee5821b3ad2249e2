// Package iothub invokes direct methods on devices through the IoT Hub REST API.
package iothub

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ConnectionString is a parsed service connection string of the form
// HostName=...;SharedAccessKeyName=...;SharedAccessKey=...
type ConnectionString struct {
	HostName string
	KeyName  string
	Key      string
}

func ParseConnectionString(s string) (ConnectionString, error) {
	var cs ConnectionString
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return ConnectionString{}, fmt.Errorf("malformed connection string segment %q", part)
		}
		switch k {
		case "HostName":
			cs.HostName = v
		case "SharedAccessKeyName":
			cs.KeyName = v
		case "SharedAccessKey":
			cs.Key = v
		}
	}

	if cs.HostName == "" || cs.KeyName == "" || cs.Key == "" {
		return ConnectionString{}, fmt.Errorf("connection string needs HostName, SharedAccessKeyName and SharedAccessKey")
	}
	if _, err := base64.StdEncoding.DecodeString(cs.Key); err != nil {
		return ConnectionString{}, errors.Wrap(err, "SharedAccessKey is not base64")
	}
	return cs, nil
}

// SASToken builds a shared access signature for the hub valid until expiry.
func (cs ConnectionString) SASToken(expiry time.Time) (string, error) {
	key, err := base64.StdEncoding.DecodeString(cs.Key)
	if err != nil {
		return "", errors.Wrap(err, "decode shared access key")
	}

	resource := url.QueryEscape(cs.HostName)
	se := strconv.FormatInt(expiry.Unix(), 10)

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(resource + "\n" + se))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf("SharedAccessSignature sr=%s&sig=%s&se=%s&skn=%s",
		resource, url.QueryEscape(sig), se, url.QueryEscape(cs.KeyName)), nil
}
