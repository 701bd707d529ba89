package catalog

import (
	"time"

	"cloud.google.com/go/civil"
)

// LabLocations are the sites a lab test can be scheduled at.
var LabLocations = []string{"Downtown Clinic", "Uptown Medical Labs", "Westside Imaging Center"}

// Fallback is served for any resource whose source fails to load.
func Fallback() Catalog {
	return Catalog{
		Doctors:      fallbackDoctors(),
		Hospitals:    fallbackHospitals(),
		LabTests:     fallbackLabTests(),
		Appointments: fallbackAppointments(),
	}
}

func fallbackDoctors() []Doctor {
	return []Doctor{
		{
			ID: 1, Name: "Dr. Evelyn Reed", Specialty: "Cardiology", Hospital: "City General Hospital",
			Availability: []string{"Mon", "Wed", "Fri"}, ImageURL: "https://picsum.photos/seed/doc1/400/400",
			YearsOfExperience: 15, Bio: "Board-certified cardiologist focused on preventive heart care.",
			ConsultationTypes: []ConsultationType{VideoCall, InPerson},
		},
		{
			ID: 2, Name: "Dr. Marcus Chen", Specialty: "Neurology", Hospital: "City General Hospital",
			Availability: []string{"Tue", "Thu"}, ImageURL: "https://picsum.photos/seed/doc2/400/400",
			YearsOfExperience: 11, Bio: "Treats migraines, epilepsy and movement disorders.",
		},
		{
			ID: 3, Name: "Dr. Sofia Alvarez", Specialty: "Pediatrics", Hospital: "St. Jude's Medical Center",
			Availability: []string{"Mon", "Tue", "Wed", "Thu", "Fri"}, ImageURL: "https://picsum.photos/seed/doc3/400/400",
			YearsOfExperience: 9, Bio: "Caring for children from newborns to teens.",
			ConsultationTypes: []ConsultationType{VideoCall, AudioCall, InPerson},
		},
		{
			ID: 4, Name: "Dr. Amara Okafor", Specialty: "Dermatology", Hospital: "Oceanview Clinic",
			Availability: []string{"Wed", "Sat"}, ImageURL: "https://picsum.photos/seed/doc4/400/400",
			YearsOfExperience: 7, Bio: "Medical and cosmetic dermatology.",
			ConsultationTypes: []ConsultationType{VideoCall, Messaging},
		},
		{
			ID: 5, Name: "Dr. James Whitfield", Specialty: "General Practice", Hospital: "Community Care Hospital",
			Availability: []string{"Mon", "Thu", "Sat"}, ImageURL: "https://picsum.photos/seed/doc5/400/400",
			YearsOfExperience: 20, Bio: "Family medicine with a focus on chronic disease management.",
		},
	}
}

func fallbackHospitals() []Hospital {
	return []Hospital{
		{
			ID: 1, Name: "City General Hospital", Location: "Metropolis",
			Specialties: []string{"Cardiology", "Neurology", "Oncology"}, Rating: 4.8,
			ImageURL: "https://picsum.photos/seed/hospital1/400/300",
			Services: []HospitalService{
				{Name: "Cardiac Stress Test", Description: "Evaluates heart function during physical activity."},
				{Name: "MRI Scan", Description: "Detailed imaging for neurological conditions."},
				{Name: "Chemotherapy", Description: "Cancer treatment using powerful chemical drugs."},
			},
		},
		{
			ID: 2, Name: "St. Jude's Medical Center", Location: "Star City",
			Specialties: []string{"Pediatrics", "Orthopedics"}, Rating: 4.9,
			ImageURL: "https://picsum.photos/seed/hospital2/400/300",
			Services: []HospitalService{
				{Name: "Childhood Vaccinations", Description: "Standard immunizations for children."},
				{Name: "Joint Replacement Surgery", Description: "Surgical procedure to replace a damaged joint."},
				{Name: "Sports Injury Clinic", Description: "Specialized care for athletic injuries."},
			},
		},
		{
			ID: 3, Name: "Oceanview Clinic", Location: "Coastline",
			Specialties: []string{"Dermatology", "General Practice"}, Rating: 4.6,
			ImageURL: "https://picsum.photos/seed/clinic1/400/300",
			Services: []HospitalService{
				{Name: "Annual Physical Exams", Description: "Comprehensive check-up for general health."},
				{Name: "Skin Cancer Screening", Description: "Examination of the skin for signs of cancer."},
			},
		},
		{
			ID: 4, Name: "Mountain Crest Hospital", Location: "Pine Valley",
			Specialties: []string{"Trauma", "Emergency Medicine"}, Rating: 4.7,
			ImageURL: "https://picsum.photos/seed/hospital3/400/300",
			Services: []HospitalService{
				{Name: "24/7 Emergency Room", Description: "Immediate care for urgent medical conditions."},
				{Name: "Trauma Surgery", Description: "Surgical care for critically injured patients."},
			},
		},
		{
			ID: 5, Name: "Community Care Hospital", Location: "Star City",
			Specialties: []string{"Geriatrics", "Family Medicine"}, Rating: 4.5,
			ImageURL: "https://picsum.photos/seed/hospital4/400/300",
			Services: []HospitalService{
				{Name: "Geriatric Assessment", Description: "Comprehensive evaluation for older adults."},
				{Name: "Chronic Disease Management", Description: "Ongoing care for conditions like diabetes and hypertension."},
			},
		},
	}
}

func fallbackLabTests() []LabTest {
	return []LabTest{
		{ID: 1, Name: "Complete Blood Count (CBC)", Description: "Evaluates your overall health and detects a wide range of disorders.", Price: 75, Category: CategoryBloodWork},
		{ID: 2, Name: "Basic Metabolic Panel (BMP)", Description: "Measures glucose, calcium, and electrolytes.", Price: 120, RequiresFasting: true, Category: CategoryBloodWork},
		{ID: 3, Name: "Lipid Panel", Description: "Measures cholesterol and triglycerides in your blood.", Price: 90, RequiresFasting: true, Category: CategoryCardiology},
		{ID: 4, Name: "Thyroid Panel (TSH)", Description: "Checks for thyroid gland problems.", Price: 150, Category: CategoryBloodWork},
		{ID: 5, Name: "MRI Scan (Brain)", Description: "Detailed imaging of the brain and surrounding nerve tissues.", Price: 850, Category: CategoryImaging},
		{ID: 6, Name: "CT Scan (Abdomen)", Description: "Provides detailed cross-sectional images of abdominal organs.", Price: 600, RequiresFasting: true, Category: CategoryImaging},
		{ID: 7, Name: "Comprehensive Metabolic Panel (CMP)", Description: "A more detailed version of the BMP, also checking liver and kidney function.", Price: 160, RequiresFasting: true, Category: CategoryBloodWork},
		{ID: 8, Name: "Urinalysis", Description: "Checks for urinary tract infections, kidney disease, and diabetes.", Price: 50, Category: CategoryGeneral},
		{ID: 9, Name: "Chest X-Ray", Description: "Produces images of the heart, lungs, airways, blood vessels and bones of the chest.", Price: 220, Category: CategoryImaging},
		{ID: 10, Name: "Electrocardiogram (ECG)", Description: "Records the electrical signal from the heart.", Price: 180, Category: CategoryCardiology},
		{ID: 11, Name: "C-Reactive Protein (CRP) Test", Description: "Measures the level of CRP, a marker for inflammation in the body.", Price: 55, Category: CategoryBloodWork},
		{ID: 13, Name: "Allergy Testing Panel", Description: "Tests for common allergens like pollen, mold, and pet dander.", Price: 350, Category: CategoryGeneral},
		{ID: 14, Name: "Liver Enzyme Test (ALT & AST)", Description: "Checks for liver damage or disease.", Price: 95, Category: CategoryBloodWork},
		{ID: 15, Name: "Kidney Function Test (Creatinine)", Description: "Evaluates how well the kidneys are working.", Price: 80, Category: CategoryBloodWork},
	}
}

func fallbackAppointments() []AppointmentRecord {
	docs := fallbackDoctors()
	date := func(y, m, d int) civil.Date {
		return civil.Date{Year: y, Month: time.Month(m), Day: d}
	}
	return []AppointmentRecord{
		{ID: 1, Doctor: docs[0], Date: date(2024, 9, 15), Time: "10:30 AM", Type: VideoCall, Status: "Upcoming",
			ReasonForVisit:          "Follow-up consultation for blood pressure.",
			PreparationInstructions: "Please have your recent blood pressure readings available."},
		{ID: 2, Doctor: docs[2], Date: date(2024, 9, 18), Time: "02:00 PM", Type: InPerson, Status: "Upcoming",
			ReasonForVisit:          "Annual pediatric check-up.",
			PreparationInstructions: "Please bring your child's vaccination records."},
		{ID: 3, Doctor: docs[1], Date: date(2024, 8, 20), Time: "11:00 AM", Type: VideoCall, Status: "Completed",
			ReasonForVisit:          "Headache and migraine evaluation.",
			PreparationInstructions: "Keep a log of headache occurrences for a week prior."},
		{ID: 4, Doctor: docs[4], Date: date(2024, 8, 15), Time: "09:00 AM", Type: AudioCall, Status: "Completed",
			ReasonForVisit: "Discuss skin rash."},
		{ID: 5, Doctor: docs[3], Date: date(2024, 7, 30), Time: "04:30 PM", Type: InPerson, Status: "Cancelled",
			ReasonForVisit: "Knee pain assessment."},
		{ID: 6, Doctor: docs[0], Date: date(2024, 9, 22), Time: "03:00 PM", Type: VideoCall, Status: "Upcoming",
			ReasonForVisit:          "Review of recent lab results.",
			PreparationInstructions: "No specific preparation needed."},
		{ID: 7, Doctor: docs[2], Date: date(2024, 8, 25), Time: "01:00 PM", Type: InPerson, Status: "Completed",
			ReasonForVisit: "Initial consultation for new patient."},
		{ID: 8, Doctor: docs[0], Date: date(2024, 9, 20), Time: "08:30 AM", Type: AudioCall, Status: "Upcoming",
			ReasonForVisit:          "Medication refill request.",
			PreparationInstructions: "Have your list of current medications ready."},
	}
}
