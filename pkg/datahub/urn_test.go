package datahub_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/acryldata/datahub-mlflow-source/pkg/datahub"
)

func TestURNBuilders(t *testing.T) {
	assert.Equal(t, "urn:li:dataPlatform:mlflow", datahub.MakeDataPlatformURN("mlflow"))
	assert.Equal(t, "urn:li:tag:mlflow_production", datahub.MakeTagURN("mlflow_production"))
	assert.Equal(t, "urn:li:corpuser:datahub", datahub.MakeCorpUserURN("datahub"))
	assert.Equal(t, "urn:li:dataProcessInstance:run-1", datahub.MakeDataProcessInstanceURN("run-1"))
	assert.Equal(
		t,
		"urn:li:mlModel:(urn:li:dataPlatform:mlflow,foo_2,PROD)",
		datahub.MakeMLModelURN("mlflow", "foo_2", "PROD"),
	)
	assert.Equal(
		t,
		"urn:li:mlModelGroup:(urn:li:dataPlatform:mlflow,foo,PROD)",
		datahub.MakeMLModelGroupURN("mlflow", "foo", "PROD"),
	)
	assert.Equal(t, "urn:li:versionSet:(foo,mlModel)", datahub.MakeVersionSetURN("foo", "mlModel"))
}

func TestContainerKeyGUIDIsDeterministic(t *testing.T) {
	key := datahub.ContainerKey{Platform: "urn:li:dataPlatform:mlflow", ID: "experiment-1"}
	other := datahub.ContainerKey{Platform: "urn:li:dataPlatform:mlflow", ID: "experiment-1"}

	assert.Equal(t, key.URN(), other.URN())
	assert.Len(t, key.GUID(), 32)
	assert.Equal(t, "urn:li:container:"+key.GUID(), key.URN())

	different := datahub.ContainerKey{Platform: "urn:li:dataPlatform:mlflow", ID: "experiment-2"}
	assert.NotEqual(t, key.GUID(), different.GUID())
}

func TestEntityTypeOf(t *testing.T) {
	scenarios := []struct {
		urn      string
		expected string
	}{
		{"urn:li:tag:mlflow_production", "tag"},
		{"urn:li:container:abc", "container"},
		{"urn:li:mlModel:(urn:li:dataPlatform:mlflow,foo_2,PROD)", "mlModel"},
		{"urn:li:versionSet:(foo,mlModel)", "versionSet"},
		{"not-a-urn", ""},
	}

	for _, scenario := range scenarios {
		assert.Equal(t, scenario.expected, datahub.EntityTypeOf(scenario.urn), scenario.urn)
	}
}

func TestProposalMarshalJSON(t *testing.T) {
	proposal := datahub.NewProposal(
		"urn:li:tag:mlflow_production",
		datahub.TagProperties{Name: "mlflow_production", ColorHex: "#308613"},
	)

	assert.Equal(t, "tagProperties", proposal.AspectName)
	assert.Equal(t, "tag", proposal.EntityType)
	assert.Equal(t, datahub.ChangeTypeUpsert, proposal.ChangeType)

	data, err := proposal.MarshalJSON()
	assert.NoError(t, err)
	assert.JSONEq(
		t,
		`{
			"entityType": "tag",
			"entityUrn": "urn:li:tag:mlflow_production",
			"changeType": "UPSERT",
			"aspectName": "tagProperties",
			"aspect": {"name": "mlflow_production", "colorHex": "#308613"}
		}`,
		string(data),
	)
}

func TestWorkUnitID(t *testing.T) {
	workUnit := datahub.NewWorkUnit("urn:li:container:abc", datahub.SubTypes{TypeNames: []string{"ML Experiment"}})
	assert.Equal(t, "urn:li:container:abc-subTypes", workUnit.ID)
}
