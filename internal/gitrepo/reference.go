package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant             = "ssh://"
	sshUserDelimiterConstant              = "@"
	sshPathDelimiterConstant              = ":"
	httpsProtocolPrefixConstant           = "https://"
	gitUserPrefixConstant                 = "git@"
	pathSeparatorConstant                 = "/"
	gitSuffixConstant                     = ".git"
	referenceParseErrorTemplateConstant   = "%s: %s"
	invalidReferenceMessageConstant       = "invalid repository reference"
	requiredValueMessageConstant          = "value is required"
	unknownProtocolMessageConstant        = "unsupported remote protocol"
	bareReferenceSegmentCountConstant     = 2
	httpsReferenceMinimumSegmentsConstant = 3
	sshFormatTemplateConstant             = "%s%s%s%s%s%s"
	httpsFormatTemplateConstant           = "%s%s%s%s%s%s%s"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RemoteURL represents a structured repository reference.
//
// Bare org/repo references parse with an empty Host; callers supply the
// configured host before formatting.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// ReferenceParseError indicates a repository reference could not be parsed.
type ReferenceParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError ReferenceParseError) Error() string {
	return fmt.Sprintf(referenceParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// UnsupportedProtocolError indicates the provided protocol cannot be formatted.
type UnsupportedProtocolError struct {
	Protocol RemoteProtocol
}

// Error describes the unsupported protocol.
func (protocolError UnsupportedProtocolError) Error() string {
	return fmt.Sprintf(referenceParseErrorTemplateConstant, protocolError.Protocol, unknownProtocolMessageConstant)
}

// ParseRepositoryReference converts an SSH, HTTPS, or bare org/repo reference into a structured representation.
func ParseRepositoryReference(reference string) (RemoteURL, error) {
	trimmedReference := strings.TrimSpace(reference)
	trimmedReference = strings.TrimSuffix(trimmedReference, pathSeparatorConstant)
	if len(trimmedReference) == 0 {
		return RemoteURL{}, ReferenceParseError{Input: reference, Message: requiredValueMessageConstant}
	}

	if strings.HasPrefix(trimmedReference, sshProtocolPrefixConstant) {
		return parseSSHReference(strings.TrimPrefix(trimmedReference, sshProtocolPrefixConstant))
	}
	if strings.HasPrefix(trimmedReference, gitUserPrefixConstant) {
		return parseSSHReference(trimmedReference)
	}
	if strings.HasPrefix(trimmedReference, httpsProtocolPrefixConstant) {
		return parseHTTPSReference(strings.TrimPrefix(trimmedReference, httpsProtocolPrefixConstant))
	}

	return parseBareReference(trimmedReference)
}

func parseSSHReference(reference string) (RemoteURL, error) {
	userSplitIndex := strings.Index(reference, sshUserDelimiterConstant)
	if userSplitIndex == -1 {
		return RemoteURL{}, ReferenceParseError{Input: reference, Message: invalidReferenceMessageConstant}
	}
	hostAndPath := reference[userSplitIndex+1:]
	pathSplitIndex := strings.Index(hostAndPath, sshPathDelimiterConstant)
	var host string
	var path string
	if pathSplitIndex == -1 {
		slashIndex := strings.Index(hostAndPath, pathSeparatorConstant)
		if slashIndex == -1 {
			return RemoteURL{}, ReferenceParseError{Input: reference, Message: invalidReferenceMessageConstant}
		}
		host = hostAndPath[:slashIndex]
		path = hostAndPath[slashIndex+1:]
	} else {
		host = hostAndPath[:pathSplitIndex]
		path = hostAndPath[pathSplitIndex+1:]
	}
	owner, repository, parseError := splitOwnerAndRepository(path)
	if parseError != nil {
		return RemoteURL{}, parseError
	}
	return RemoteURL{Protocol: RemoteProtocolSSH, Host: host, Owner: owner, Repository: repository}, nil
}

func parseHTTPSReference(reference string) (RemoteURL, error) {
	pathComponents := strings.Split(reference, pathSeparatorConstant)
	if len(pathComponents) < httpsReferenceMinimumSegmentsConstant {
		return RemoteURL{}, ReferenceParseError{Input: reference, Message: invalidReferenceMessageConstant}
	}
	host := pathComponents[0]
	owner, repository, parseError := splitOwnerAndRepository(strings.Join(pathComponents[1:], pathSeparatorConstant))
	if parseError != nil {
		return RemoteURL{}, parseError
	}
	return RemoteURL{Protocol: RemoteProtocolHTTPS, Host: host, Owner: owner, Repository: repository}, nil
}

func parseBareReference(reference string) (RemoteURL, error) {
	owner, repository, parseError := splitOwnerAndRepository(reference)
	if parseError != nil {
		return RemoteURL{}, parseError
	}
	return RemoteURL{Protocol: RemoteProtocolSSH, Owner: owner, Repository: repository}, nil
}

func splitOwnerAndRepository(path string) (string, string, error) {
	segments := strings.Split(path, pathSeparatorConstant)
	if len(segments) != bareReferenceSegmentCountConstant {
		return "", "", ReferenceParseError{Input: path, Message: invalidReferenceMessageConstant}
	}
	if len(segments[0]) == 0 {
		return "", "", ReferenceParseError{Input: path, Message: invalidReferenceMessageConstant}
	}
	repository, parseError := normalizeRepositoryName(segments[1])
	if parseError != nil {
		return "", "", parseError
	}
	return segments[0], repository, nil
}

func normalizeRepositoryName(repository string) (string, error) {
	trimmed := strings.TrimSuffix(repository, pathSeparatorConstant)
	trimmed = strings.TrimSuffix(trimmed, gitSuffixConstant)
	if len(trimmed) == 0 {
		return "", ReferenceParseError{Input: repository, Message: invalidReferenceMessageConstant}
	}
	return trimmed, nil
}

// RepositoryNameFromReference extracts the final path segment of any reference form.
//
// It tolerates inputs the full parser rejects so callers can derive a local
// directory name even from unusual references.
func RepositoryNameFromReference(reference string) string {
	trimmedReference := strings.TrimSpace(reference)
	trimmedReference = strings.TrimSuffix(trimmedReference, pathSeparatorConstant)
	trimmedReference = strings.TrimSuffix(trimmedReference, gitSuffixConstant)

	lastSlashIndex := strings.LastIndex(trimmedReference, pathSeparatorConstant)
	if lastSlashIndex >= 0 {
		return trimmedReference[lastSlashIndex+1:]
	}
	lastColonIndex := strings.LastIndex(trimmedReference, sshPathDelimiterConstant)
	if lastColonIndex >= 0 {
		return trimmedReference[lastColonIndex+1:]
	}
	return trimmedReference
}

// FormatRemoteURL creates a textual remote URL from a structured representation.
func FormatRemoteURL(remote RemoteURL) (string, error) {
	if len(strings.TrimSpace(remote.Host)) == 0 {
		return "", ReferenceParseError{Input: remote.Host, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(remote.Owner)) == 0 {
		return "", ReferenceParseError{Input: remote.Owner, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(remote.Repository)) == 0 {
		return "", ReferenceParseError{Input: remote.Repository, Message: requiredValueMessageConstant}
	}

	switch remote.Protocol {
	case RemoteProtocolSSH:
		return fmt.Sprintf(sshFormatTemplateConstant, gitUserPrefixConstant, remote.Host, sshPathDelimiterConstant, remote.Owner, pathSeparatorConstant, remote.Repository+gitSuffixConstant), nil
	case RemoteProtocolHTTPS:
		return fmt.Sprintf(httpsFormatTemplateConstant, httpsProtocolPrefixConstant, remote.Host, pathSeparatorConstant, remote.Owner, pathSeparatorConstant, remote.Repository, gitSuffixConstant), nil
	default:
		return "", UnsupportedProtocolError{Protocol: remote.Protocol}
	}
}
