package datahub

// Aspect is one typed property bundle attached to an entity URN. The name
// returned by AspectName is the registered aspect name in the DataHub
// metadata model.
type Aspect interface {
	AspectName() string
}

type AuditStamp struct {
	Time  int64  `json:"time"`
	Actor string `json:"actor"`
}

type TimeStamp struct {
	Time  int64   `json:"time"`
	Actor *string `json:"actor,omitempty"`
}

type MetadataAttribution struct {
	Time  int64  `json:"time"`
	Actor string `json:"actor"`
}

type VersionTag struct {
	VersionTag          string               `json:"versionTag,omitempty"`
	MetadataAttribution *MetadataAttribution `json:"metadataAttribution,omitempty"`
}

type TagProperties struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ColorHex    string `json:"colorHex,omitempty"`
}

func (TagProperties) AspectName() string { return "tagProperties" }

type ContainerProperties struct {
	Name             string            `json:"name"`
	Description      *string           `json:"description,omitempty"`
	CustomProperties map[string]string `json:"customProperties,omitempty"`
}

func (ContainerProperties) AspectName() string { return "containerProperties" }

// Container links an entity to the container it lives in.
type Container struct {
	Container string `json:"container"`
}

func (Container) AspectName() string { return "container" }

type SubTypes struct {
	TypeNames []string `json:"typeNames"`
}

func (SubTypes) AspectName() string { return "subTypes" }

type BrowsePathEntry struct {
	ID  string  `json:"id"`
	URN *string `json:"urn,omitempty"`
}

type BrowsePathsV2 struct {
	Path []BrowsePathEntry `json:"path"`
}

func (BrowsePathsV2) AspectName() string { return "browsePathsV2" }

type DataPlatformInstance struct {
	Platform string  `json:"platform"`
	Instance *string `json:"instance,omitempty"`
}

func (DataPlatformInstance) AspectName() string { return "dataPlatformInstance" }

type DataProcessInstanceProperties struct {
	Name             string            `json:"name"`
	Created          AuditStamp        `json:"created"`
	ExternalURL      *string           `json:"externalUrl,omitempty"`
	CustomProperties map[string]string `json:"customProperties"`
}

func (DataProcessInstanceProperties) AspectName() string { return "dataProcessInstanceProperties" }

type DataProcessInstanceOutput struct {
	Outputs []string `json:"outputs"`
}

func (DataProcessInstanceOutput) AspectName() string { return "dataProcessInstanceOutput" }

type MLMetric struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type MLHyperParam struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type MLTrainingRunProperties struct {
	ID              string         `json:"id,omitempty"`
	ExternalURL     *string        `json:"externalUrl,omitempty"`
	HyperParams     []MLHyperParam `json:"hyperParams,omitempty"`
	TrainingMetrics []MLMetric     `json:"trainingMetrics,omitempty"`
	OutputURLs      []string       `json:"outputUrls,omitempty"`
}

func (MLTrainingRunProperties) AspectName() string { return "mlTrainingRunProperties" }

type RunStatus string

const RunStatusComplete RunStatus = "COMPLETE"

type RunResultType string

const (
	RunResultSuccess RunResultType = "SUCCESS"
	RunResultFailure RunResultType = "FAILURE"
	RunResultSkipped RunResultType = "SKIPPED"
)

type DataProcessInstanceRunResult struct {
	Type             RunResultType `json:"type"`
	NativeResultType string        `json:"nativeResultType"`
}

type DataProcessInstanceRunEvent struct {
	TimestampMillis int64                         `json:"timestampMillis"`
	Status          RunStatus                     `json:"status"`
	Result          *DataProcessInstanceRunResult `json:"result,omitempty"`
	DurationMillis  *int64                        `json:"durationMillis,omitempty"`
}

func (DataProcessInstanceRunEvent) AspectName() string { return "dataProcessInstanceRunEvent" }

type MLModelGroupProperties struct {
	CustomProperties map[string]string `json:"customProperties,omitempty"`
	Description      *string           `json:"description,omitempty"`
	Created          *TimeStamp        `json:"created,omitempty"`
	LastModified     *TimeStamp        `json:"lastModified,omitempty"`
	Version          *VersionTag       `json:"version,omitempty"`
}

func (MLModelGroupProperties) AspectName() string { return "mlModelGroupProperties" }

type MLModelProperties struct {
	CustomProperties map[string]string `json:"customProperties,omitempty"`
	ExternalURL      *string           `json:"externalUrl,omitempty"`
	Description      *string           `json:"description,omitempty"`
	Created          *TimeStamp        `json:"created,omitempty"`
	LastModified     *TimeStamp        `json:"lastModified,omitempty"`
	HyperParams      []MLHyperParam    `json:"hyperParams,omitempty"`
	TrainingMetrics  []MLMetric        `json:"trainingMetrics,omitempty"`
	Tags             []string          `json:"tags,omitempty"`
	Groups           []string          `json:"groups,omitempty"`
	TrainingJobs     []string          `json:"trainingJobs,omitempty"`
}

func (MLModelProperties) AspectName() string { return "mlModelProperties" }

type VersionProperties struct {
	VersionSet string       `json:"versionSet"`
	Version    VersionTag   `json:"version"`
	SortID     string       `json:"sortId"`
	Aliases    []VersionTag `json:"aliases,omitempty"`
}

func (VersionProperties) AspectName() string { return "versionProperties" }

type VersionSetProperties struct {
	Latest           string `json:"latest"`
	VersioningScheme string `json:"versioningScheme"`
}

func (VersionSetProperties) AspectName() string { return "versionSetProperties" }

type TagAssociation struct {
	Tag string `json:"tag"`
}

type GlobalTags struct {
	Tags []TagAssociation `json:"tags"`
}

func (GlobalTags) AspectName() string { return "globalTags" }

// Status with removed=true soft-deletes an entity; stale entity removal
// emits it for URNs seen in the previous pass but not the current one.
type Status struct {
	Removed bool `json:"removed"`
}

func (Status) AspectName() string { return "status" }
