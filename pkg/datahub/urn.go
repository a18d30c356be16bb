// Package datahub carries the slice of the DataHub metadata model this
// connector emits: URN construction, aspect payloads, the change proposal
// envelope and emitters.
package datahub

import (
	"crypto/md5" //nolint:gosec // container guids are md5 by upstream definition
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Every URN is a pure function of its inputs so that re-extracting the same
// remote entity always addresses the same catalog entity.

func MakeDataPlatformURN(platform string) string {
	return "urn:li:dataPlatform:" + platform
}

func MakeTagURN(name string) string {
	return "urn:li:tag:" + name
}

func MakeCorpUserURN(name string) string {
	return "urn:li:corpuser:" + name
}

func MakePlatformResourceURN(id string) string {
	return "urn:li:platformResource:" + id
}

func MakeDataProcessInstanceURN(id string) string {
	return "urn:li:dataProcessInstance:" + id
}

func MakeMLModelURN(platform, name, env string) string {
	return fmt.Sprintf("urn:li:mlModel:(%s,%s,%s)", MakeDataPlatformURN(platform), name, env)
}

func MakeMLModelGroupURN(platform, name, env string) string {
	return fmt.Sprintf("urn:li:mlModelGroup:(%s,%s,%s)", MakeDataPlatformURN(platform), name, env)
}

func MakeVersionSetURN(id, entityType string) string {
	return fmt.Sprintf("urn:li:versionSet:(%s,%s)", id, entityType)
}

// ContainerKey identifies a container by platform plus a natural id. Field
// order matters: the guid is the md5 of the key's canonical JSON.
type ContainerKey struct {
	Platform string `json:"platform"`
	ID       string `json:"id"`
}

func (k ContainerKey) GUID() string {
	data, _ := json.Marshal(k)
	sum := md5.Sum(data) //nolint:gosec

	return hex.EncodeToString(sum[:])
}

func (k ContainerKey) URN() string {
	return "urn:li:container:" + k.GUID()
}

// EntityTypeOf extracts the entity type from an urn:li:<type>:... URN.
func EntityTypeOf(urn string) string {
	parts := strings.SplitN(urn, ":", 4)
	if len(parts) < 4 || parts[0] != "urn" || parts[1] != "li" {
		return ""
	}

	return parts[2]
}
