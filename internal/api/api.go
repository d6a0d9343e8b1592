// Package api defines the pacsgate RPC surface: procedure names, request and
// response messages, and the JSON codec used on the wire.
//
// Procedures follow the Connect naming scheme /pacsgate.v1.<Service>/<Method>
// and are served as unary Connect calls.
package api

import (
	"encoding/json"
)

const (
	AuthServiceName     = "pacsgate.v1.AuthService"
	UnitServiceName     = "pacsgate.v1.UnitService"
	UserServiceName     = "pacsgate.v1.UserService"
	StudyServiceName    = "pacsgate.v1.StudyService"
	TemplateServiceName = "pacsgate.v1.TemplateService"
	ReportServiceName   = "pacsgate.v1.ReportService"
	PacsServiceName     = "pacsgate.v1.PacsService"
)

const (
	AuthServiceMeProcedure      = "/" + AuthServiceName + "/Me"
	AuthServiceSignOutProcedure = "/" + AuthServiceName + "/SignOut"

	UnitServiceListUnitsProcedure  = "/" + UnitServiceName + "/ListUnits"
	UnitServiceGetUnitProcedure    = "/" + UnitServiceName + "/GetUnit"
	UnitServiceCreateUnitProcedure = "/" + UnitServiceName + "/CreateUnit"
	UnitServiceUpdateUnitProcedure = "/" + UnitServiceName + "/UpdateUnit"
	UnitServiceDeleteUnitProcedure = "/" + UnitServiceName + "/DeleteUnit"

	UserServiceListUsersProcedure  = "/" + UserServiceName + "/ListUsers"
	UserServiceCreateUserProcedure = "/" + UserServiceName + "/CreateUser"
	UserServiceUpdateUserProcedure = "/" + UserServiceName + "/UpdateUser"
	UserServiceDeleteUserProcedure = "/" + UserServiceName + "/DeleteUser"

	StudyServiceListStudiesProcedure = "/" + StudyServiceName + "/ListStudies"
	StudyServiceGetStudyProcedure    = "/" + StudyServiceName + "/GetStudy"
	StudyServiceOpenViewerProcedure  = "/" + StudyServiceName + "/OpenViewer"

	TemplateServiceListTemplatesProcedure  = "/" + TemplateServiceName + "/ListTemplates"
	TemplateServiceGetTemplateProcedure    = "/" + TemplateServiceName + "/GetTemplate"
	TemplateServiceCreateTemplateProcedure = "/" + TemplateServiceName + "/CreateTemplate"
	TemplateServiceUpdateTemplateProcedure = "/" + TemplateServiceName + "/UpdateTemplate"
	TemplateServiceDeleteTemplateProcedure = "/" + TemplateServiceName + "/DeleteTemplate"

	ReportServiceGetReportByStudyProcedure = "/" + ReportServiceName + "/GetReportByStudy"
	ReportServiceGetReportProcedure        = "/" + ReportServiceName + "/GetReport"
	ReportServiceCreateReportProcedure     = "/" + ReportServiceName + "/CreateReport"
	ReportServiceUpdateReportProcedure     = "/" + ReportServiceName + "/UpdateReport"
	ReportServiceSignReportProcedure       = "/" + ReportServiceName + "/SignReport"
	ReportServiceReviseReportProcedure     = "/" + ReportServiceName + "/ReviseReport"

	PacsServiceQueryProcedure    = "/" + PacsServiceName + "/Query"
	PacsServiceDownloadProcedure = "/" + PacsServiceName + "/Download"
)

// ServicePaths lists the URL prefix of every service, for routing and CORS.
var ServicePaths = []string{
	"/" + AuthServiceName + "/",
	"/" + UnitServiceName + "/",
	"/" + UserServiceName + "/",
	"/" + StudyServiceName + "/",
	"/" + TemplateServiceName + "/",
	"/" + ReportServiceName + "/",
	"/" + PacsServiceName + "/",
}

// CodecName is the Connect codec name, selected by the application/json content type.
const CodecName = "json"

// Codec encodes messages with encoding/json. It replaces the protobuf JSON codec
// Connect registers by default since the messages are plain Go structs.
type Codec struct{}

func (Codec) Name() string {
	return CodecName
}

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
