package invoker

import (
	"fmt"
	"strings"
)

const (
	unsupportedPolicyErrorTemplateConstant = "unsupported %s %q (expected one of %s)"
	policyChoicesSeparatorConstant         = ", "
	updateSnapshotsPolicyLabelConstant     = "update snapshots policy"
	checksumPolicyLabelConstant            = "checksum policy"
	reactorFailureBehaviorLabelConstant    = "reactor failure behavior"
)

// UpdateSnapshotsPolicyChoices lists the accepted non-default update snapshot policies.
func UpdateSnapshotsPolicyChoices() []string {
	return []string{string(UpdateSnapshotsPolicyAlways), string(UpdateSnapshotsPolicyNever)}
}

// ChecksumPolicyChoices lists the accepted non-default checksum policies.
func ChecksumPolicyChoices() []string {
	return []string{string(ChecksumPolicyFail), string(ChecksumPolicyWarn)}
}

// ReactorFailureBehaviorChoices lists the accepted reactor failure behaviors.
func ReactorFailureBehaviorChoices() []string {
	return []string{string(ReactorFailureBehaviorFailFast), string(ReactorFailureBehaviorFailAtEnd), string(ReactorFailureBehaviorFailNever)}
}

// ParseUpdateSnapshotsPolicy converts text into an UpdateSnapshotsPolicy. Empty text selects the default.
func ParseUpdateSnapshotsPolicy(policyText string) (UpdateSnapshotsPolicy, error) {
	normalized, parseError := parseChoice(policyText, UpdateSnapshotsPolicyChoices(), updateSnapshotsPolicyLabelConstant)
	return UpdateSnapshotsPolicy(normalized), parseError
}

// ParseChecksumPolicy converts text into a ChecksumPolicy. Empty text selects the default.
func ParseChecksumPolicy(policyText string) (ChecksumPolicy, error) {
	normalized, parseError := parseChoice(policyText, ChecksumPolicyChoices(), checksumPolicyLabelConstant)
	return ChecksumPolicy(normalized), parseError
}

// ParseReactorFailureBehavior converts text into a ReactorFailureBehavior. Empty text selects fail-fast.
func ParseReactorFailureBehavior(behaviorText string) (ReactorFailureBehavior, error) {
	normalized, parseError := parseChoice(behaviorText, ReactorFailureBehaviorChoices(), reactorFailureBehaviorLabelConstant)
	return ReactorFailureBehavior(normalized), parseError
}

func parseChoice(choiceText string, choices []string, label string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(choiceText))
	if len(normalized) == 0 {
		return "", nil
	}
	for _, choice := range choices {
		if normalized == choice {
			return normalized, nil
		}
	}
	return "", fmt.Errorf(unsupportedPolicyErrorTemplateConstant, label, choiceText, strings.Join(choices, policyChoicesSeparatorConstant))
}
