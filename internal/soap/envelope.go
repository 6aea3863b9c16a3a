package soap

import "encoding/xml"

// Request envelope types. The credentials header rides on every call.

type requestEnvelope struct {
	XMLName   xml.Name      `xml:"soap:Envelope"`
	XMLNSSoap string        `xml:"xmlns:soap,attr"`
	Header    requestHeader `xml:"soap:Header"`
	Body      requestBody   `xml:"soap:Body"`
}

type requestHeader struct {
	Credentials userCredentials
}

type userCredentials struct {
	XMLName  xml.Name `xml:"UserCredentials"`
	XMLNS    string   `xml:"xmlns,attr"`
	UserName string   `xml:"UserName"`
	PWD      string   `xml:"PWD"`
}

type requestBody struct {
	Payload any
}

type recordSwipeSummaryRequest struct {
	XMLName    xml.Name `xml:"RecordSwipeSummary"`
	XMLNS      string   `xml:"xmlns,attr"`
	SwipeInput string   `xml:"swipeInput"`
}

type recordSwipeSummaryOverrideRequest struct {
	XMLName    xml.Name `xml:"RecordSwipeSummaryDepartmentOverride"`
	XMLNS      string   `xml:"xmlns,attr"`
	SwipeInput string   `xml:"swipeInput"`
}

type saveImageRequest struct {
	XMLName  xml.Name `xml:"SaveImage"`
	XMLNS    string   `xml:"xmlns,attr"`
	FileName string   `xml:"fileName"`
	Data     string   `xml:"data"`
	Dir      string   `xml:"dir"`
}

// Response envelope types. The ",any" fields absorb the per-operation
// response and result element names (RecordSwipeSummaryResponse vs
// RecordSwipeSummaryDepartmentOverrideResponse) so one decoder serves
// both swipe operations. Numeric fields decode as strings because the
// service sends empty elements for absent values.

type swipeResponseEnvelope struct {
	XMLName xml.Name          `xml:"Envelope"`
	Body    swipeResponseBody `xml:"Body"`
}

type swipeResponseBody struct {
	Response swipeOperationResponse `xml:",any"`
}

type swipeOperationResponse struct {
	Result swipeResult `xml:",any"`
}

type swipeResult struct {
	ReturnInfo         returnInfo `xml:"RecordSwipeReturnInfo"`
	CurrentWeeklyHours *string    `xml:"CurrentWeeklyHours"`
}

type returnInfo struct {
	PunchSuccess    bool    `xml:"PunchSuccess"`
	PunchType       string  `xml:"PunchType"`
	FirstName       string  `xml:"FirstName"`
	LastName        string  `xml:"LastName"`
	PunchException  *string `xml:"PunchException"`
	SystemErrorCode *string `xml:"SystemErrorCode"`
}

type saveImageResponseEnvelope struct {
	XMLName xml.Name        `xml:"Envelope"`
	Result  saveImageResult `xml:"Body>SaveImageResponse>SaveImageResult"`
}

type saveImageResult struct {
	SystemErrorCode *string `xml:"SystemErrorCode"`
}
